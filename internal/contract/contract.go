// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/personalens/personalens/schema"
)

// TextEmbedder turns texts into feature vectors.
// The engine never calls a model directly, so any provider can be injected and tests can use a fake.
type TextEmbedder interface {
	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([]schema.FeatureVector, error)

	// Model names the embedding model, reported as embeddingModel in every response.
	Model() string
}

// ReportVault keeps the latest response of each operation.
// Put replaces the previous snapshot of a section (last write wins).
type ReportVault interface {
	Put(section schema.Section, snapshot any) error
	GetAll() (map[schema.Section]schema.VaultEntry, error)
	GetStatus() (schema.VaultStatus, error)
	Close() error
}

// RunStore defines the interface for tracking analysis runs and their scored segments.
type RunStore interface {
	// BeginRun creates a new run and returns its numeric ID
	BeginRun(operation string, modality schema.Modality, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalItems int, consistencyScore *float64) error

	// RecordSegments stores the scored segments of a run
	RecordSegments(runID int64, segments []schema.ScoredSegment) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every tracked run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllSegments returns every recorded segment score ordered by run and index
	GetAllSegments() ([]schema.SegmentScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}

// StoreManager hands out the process-wide stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetVault() ReportVault
	GetRunStore() RunStore
}
