package core

import (
	"fmt"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/internal/embedder"
	"github.com/personalens/personalens/internal/iocache"
)

// noopClose is returned when there is nothing to release.
func noopClose() error { return nil }

// NewEmbedder builds the configured text embedder. With EmbedCache set it is
// wrapped by the BadgerDB embedding cache, and the returned function closes the cache.
func NewEmbedder(cfg *contract.Config) (contract.TextEmbedder, func() error, error) {
	inner, err := embedder.New(cfg)
	if err != nil {
		return nil, noopClose, err
	}
	if !cfg.EmbedCache {
		return inner, noopClose, nil
	}
	cached, err := iocache.NewCachedEmbedder(inner, iocache.EmbedCacheOptions{Dir: cfg.EmbedCacheDir})
	if err != nil {
		// Fallback to direct embedding
		contract.LogWarn(fmt.Sprintf("Embedding cache unavailable at %s", cfg.EmbedCacheDir), err)
		return inner, noopClose, nil
	}
	return cached, cached.Close, nil
}
