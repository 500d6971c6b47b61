package embedder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

const (
	openAIMaxBatch       = 2048 // OpenAI supports up to 2048 inputs per request
	openAIDefaultRetries = 2
)

// OpenAI implements [contract.TextEmbedder] using the OpenAI embeddings API.
//
// This can also be used with any OpenAI-compatible provider (Ollama, vLLM, LiteLLM)
// by setting WithBaseURL.
type OpenAI struct {
	client *openai.Client
	model  string
	dim    int
}

var _ contract.TextEmbedder = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI embedder.
func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	cfg := config{
		model:      schema.DefaultEmbedModel,
		dim:        schema.DefaultEmbedDim,
		httpClient: http.DefaultClient,
		maxRetries: openAIDefaultRetries,
	}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAI{
		client: &client,
		model:  cfg.model,
		dim:    cfg.dim,
	}
}

// EmbedTexts returns embeddings for multiple texts.
// Batches larger than 2048 are automatically split into multiple API calls.
// Any API failure is reported as an UpstreamEmbeddingFailure.
func (o *OpenAI) EmbedTexts(ctx context.Context, texts []string) ([]schema.FeatureVector, error) {
	if len(texts) == 0 {
		return nil, schema.EmptyInput("texts")
	}

	result := make([]schema.FeatureVector, len(texts))
	for i := 0; i < len(texts); i += openAIMaxBatch {
		end := min(i+openAIMaxBatch, len(texts))
		vecs, err := o.callAPI(ctx, texts[i:end])
		if err != nil {
			return nil, schema.UpstreamEmbeddingFailure(o.model, fmt.Errorf("embed batch [%d:%d]: %w", i, end, err))
		}
		copy(result[i:], vecs)
	}
	return result, nil
}

// Dimension returns the configured vector dimensionality.
func (o *OpenAI) Dimension() int {
	return o.dim
}

// Model returns the model identifier (e.g., "text-embedding-3-small").
func (o *OpenAI) Model() string {
	return o.model
}

func (o *OpenAI) callAPI(ctx context.Context, texts []string) ([]schema.FeatureVector, error) {
	params := openai.EmbeddingNewParams{
		Model:          o.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions:     openai.Int(int64(o.dim)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}

	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	vecs := make([]schema.FeatureVector, len(texts))
	for _, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= int64(len(texts)) {
			return nil, fmt.Errorf("unexpected embedding index %d for batch size %d", idx, len(texts))
		}
		vecs[idx] = schema.FeatureVector(item.Embedding)
	}

	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return vecs, nil
}
