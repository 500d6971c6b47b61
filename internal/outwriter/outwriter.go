// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteDrift prints a two-text drift result using the configured output format.
func (ow *OutWriter) WriteDrift(result schema.DriftResult, cfg *contract.Config, duration time.Duration) error {
	return PrintDriftResult(result, cfg, duration)
}

// WriteDriftSet prints a set drift result using the configured output format.
func (ow *OutWriter) WriteDriftSet(result schema.DriftSetResult, cfg *contract.Config, duration time.Duration) error {
	return PrintDriftSetResult(result, cfg, duration)
}

// WriteTimeline prints a timeline result using the configured output format.
func (ow *OutWriter) WriteTimeline(result schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	return PrintTimelineResult(result, cfg, duration)
}

// WriteClusters prints a clustering result using the configured output format.
func (ow *OutWriter) WriteClusters(result schema.ClusterResult, cfg *contract.Config, duration time.Duration) error {
	return PrintClusterResult(result, cfg, duration)
}

// WriteShift prints an audio or video shift result using the configured output format.
func (ow *OutWriter) WriteShift(result schema.ShiftResult, cfg *contract.Config, duration time.Duration) error {
	return PrintShiftResult(result, cfg, duration)
}

// WriteReasons prints a text reasons result using the configured output format.
func (ow *OutWriter) WriteReasons(result schema.ReasonsResult, cfg *contract.Config, duration time.Duration) error {
	return PrintReasonsResult(result, cfg, duration)
}

// WriteSignals prints the lexical signals of one text using the configured output format.
func (ow *OutWriter) WriteSignals(counts schema.LexicalCounts, cfg *contract.Config) error {
	return PrintSignals(counts, cfg)
}
