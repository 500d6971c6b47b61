package iocache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
	"github.com/vmihailenco/msgpack/v5"
)

// EmbedCacheOptions configures the on-disk embedding cache.
type EmbedCacheOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool
}

// CachedEmbedder memoizes the vectors of a TextEmbedder in BadgerDB.
// Entries are keyed by model and text digest, so switching models never
// returns stale vectors.
type CachedEmbedder struct {
	inner contract.TextEmbedder
	db    *badger.DB
}

var _ contract.TextEmbedder = &CachedEmbedder{} // Compile-time check

// NewCachedEmbedder opens the cache and wraps inner with it.
func NewCachedEmbedder(inner contract.TextEmbedder, opts EmbedCacheOptions) (*CachedEmbedder, error) {
	if inner == nil {
		return nil, errors.New("embed cache: inner embedder is required")
	}
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("embed cache: directory is required for on-disk mode")
	}

	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, db: db}, nil
}

// Model returns the model of the wrapped embedder.
func (c *CachedEmbedder) Model() string {
	return c.inner.Model()
}

// EmbedTexts returns cached vectors and embeds only the misses.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([]schema.FeatureVector, error) {
	if len(texts) == 0 {
		return nil, schema.EmptyInput("texts")
	}

	out := make([]schema.FeatureVector, len(texts))
	var missIdx []int
	var missTexts []string

	err := c.db.View(func(txn *badger.Txn) error {
		for i, text := range texts {
			item, err := txn.Get(c.key(text))
			if errors.Is(err, badger.ErrKeyNotFound) {
				missIdx = append(missIdx, i)
				missTexts = append(missTexts, text)
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &out[i])
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding cache: %w", err)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, schema.UpstreamEmbeddingFailure(c.inner.Model(),
			fmt.Errorf("got %d embeddings for %d texts", len(fresh), len(missTexts)))
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for j, i := range missIdx {
		out[i] = fresh[j]
		val, err := msgpack.Marshal([]float64(fresh[j]))
		if err != nil {
			return nil, fmt.Errorf("failed to encode embedding: %w", err)
		}
		if err := wb.Set(c.key(missTexts[j]), val); err != nil {
			return nil, fmt.Errorf("failed to stage embedding: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		// A failed write only costs a future re-embed
		contract.LogWarn("writing embedding cache", err)
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close closes the cache. The wrapped embedder is left open.
func (c *CachedEmbedder) Close() error {
	return c.db.Close()
}

func (c *CachedEmbedder) key(text string) []byte {
	sum := sha256.Sum256([]byte(text))
	return fmt.Appendf(nil, "emb:%s:%x", c.inner.Model(), sum)
}

// badgerLogger routes badger warnings and errors to stderr, suppressing
// debug and info level messages.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...any)   { contract.LogWarn("badger", fmt.Errorf(f, v...)) }
func (badgerLogger) Warningf(f string, v ...any) { contract.LogWarn("badger", fmt.Errorf(f, v...)) }
func (badgerLogger) Infof(string, ...any)        {}
func (badgerLogger) Debugf(string, ...any)       {}
