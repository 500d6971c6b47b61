// Package core has core logic for drift, clustering and baseline-relative shift analysis.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// Analyzer runs the analysis operations. It does no I/O of its own:
// text is turned into vectors by the injected embedder.
type Analyzer struct {
	Embedder contract.TextEmbedder
	Workers  int
}

// NewAnalyzer creates an analyzer that embeds text with emb and
// parallelizes scoring over the given number of workers.
func NewAnalyzer(emb contract.TextEmbedder, workers int) *Analyzer {
	return &Analyzer{Embedder: emb, Workers: max(1, workers)}
}

// model reports the embedding model, or an empty string without an embedder.
func (a *Analyzer) model() string {
	if a.Embedder == nil {
		return ""
	}
	return a.Embedder.Model()
}

// embed returns one vector per text. Embedder failures that are not already
// structured are reported as UpstreamEmbeddingFailure with the cause kept.
func (a *Analyzer) embed(ctx context.Context, texts []string) ([]schema.FeatureVector, error) {
	if a.Embedder == nil {
		return nil, schema.InvalidParameter("embedder", "a text embedder is required")
	}
	vecs, err := a.Embedder.EmbedTexts(ctx, texts)
	if err != nil {
		var ae *schema.AnalysisError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, schema.UpstreamEmbeddingFailure(a.Embedder.Model(), err)
	}
	if len(vecs) != len(texts) {
		return nil, schema.UpstreamEmbeddingFailure(a.Embedder.Model(),
			fmt.Errorf("expected %d vectors, got %d", len(texts), len(vecs)))
	}
	return vecs, nil
}
