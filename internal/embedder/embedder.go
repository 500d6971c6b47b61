// Package embedder provides the text embedders injected into the analysis engine.
//
// Two implementations are provided:
//
//   - [OpenAI] calls any OpenAI-compatible embeddings endpoint.
//   - [Hashing] is an offline feature-hashing embedder with no network access.
package embedder

import (
	"fmt"
	"net/http"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// config holds shared configuration for embedder implementations.
type config struct {
	model      string
	dim        int
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// Option configures an embedder.
type Option func(*config)

// WithModel sets the embedding model name.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithDimension sets the desired output vector dimensionality.
func WithDimension(dim int) Option {
	return func(c *config) { c.dim = dim }
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option {
	return func(c *config) { c.maxRetries = n }
}

// New builds the embedder selected by cfg.
func New(cfg *contract.Config) (contract.TextEmbedder, error) {
	switch cfg.Embedder {
	case schema.HashEmbedder, "":
		return NewHashing(cfg.EmbedDim), nil
	case schema.OpenAIEmbedder:
		opts := []Option{WithModel(cfg.EmbedModel), WithDimension(cfg.EmbedDim)}
		if cfg.EmbedBaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.EmbedBaseURL))
		}
		return NewOpenAI(cfg.EmbedAPIKey, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported embedder: %s", cfg.Embedder)
	}
}
