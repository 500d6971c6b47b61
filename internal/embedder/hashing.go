package embedder

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/personalens/personalens/core/lexical"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
	"gonum.org/v1/gonum/floats"
)

// bigramWeight scales adjacent word pairs relative to single words.
const bigramWeight = 0.5

// Hashing is a deterministic offline embedder.
// It hashes words and adjacent word pairs into signed buckets and L2-normalizes the result,
// so texts sharing vocabulary land close together without any model.
type Hashing struct {
	dim int
}

var _ contract.TextEmbedder = (*Hashing)(nil)

// NewHashing creates a feature-hashing embedder with dim buckets.
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = schema.DefaultEmbedDim
	}
	return &Hashing{dim: dim}
}

// EmbedTexts embeds every text independently. A text without words maps to the zero vector.
func (h *Hashing) EmbedTexts(ctx context.Context, texts []string) ([]schema.FeatureVector, error) {
	if len(texts) == 0 {
		return nil, schema.EmptyInput("texts")
	}
	out := make([]schema.FeatureVector, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(text)
	}
	return out, nil
}

// Dimension returns the number of hash buckets.
func (h *Hashing) Dimension() int {
	return h.dim
}

// Model identifies the embedder and its bucket count.
func (h *Hashing) Model() string {
	return fmt.Sprintf("feature-hash-%d", h.dim)
}

func (h *Hashing) embed(text string) schema.FeatureVector {
	vec := make(schema.FeatureVector, h.dim)
	words := lexical.Words(text)
	for i, w := range words {
		h.add(vec, w, 1)
		if i > 0 {
			h.add(vec, words[i-1]+" "+w, bigramWeight)
		}
	}

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

func (h *Hashing) add(vec schema.FeatureVector, token string, weight float64) {
	sum := xxhash.Sum64String(token)
	bucket := sum % uint64(h.dim)
	// top bit picks the sign so collisions tend to cancel
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}
