package core

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/internal/outwriter"
	"github.com/personalens/personalens/schema"
)

// runPlan describes a tracked analysis before it runs.
type runPlan struct {
	section  schema.Section
	modality schema.Modality
	items    int            // input size, for the header
	params   map[string]any // operation parameters recorded with the run
}

// runOutcome is what a finished analysis reports to the run store.
type runOutcome struct {
	items    int
	score    *float64
	segments []schema.ScoredSegment
}

// runTracked wraps an analysis with the common bookkeeping: the header, run tracking
// in the run store and the snapshot in the report vault. Store failures are logged
// and never fail the analysis.
func runTracked[T any](ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, plan runPlan,
	analyze func(context.Context) (T, error), outcome func(T) runOutcome,
) (T, error) {
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg, plan.section, plan.items)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	runs := runStoreOf(mgr)
	if runs != nil {
		params := cfg.RunParams()
		maps.Copy(params, plan.params)
		runID, err := runs.BeginRun(string(plan.section), plan.modality, time.Now(), params)
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if runID > 0 {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Analysis ---
	result, err := analyze(ctx)
	if err != nil {
		endRun(ctx, runs, runOutcome{})
		return result, err
	}
	out := outcome(result)

	// --- 2. End Run Tracking ---
	if len(out.segments) > 0 {
		recordSegments(ctx, runs, out.segments)
	}
	endRun(ctx, runs, out)

	// --- 3. Vault Snapshot (last write wins) ---
	if vault := vaultOf(mgr); vault != nil {
		if err := vault.Put(plan.section, result); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to save %s report to vault", plan.section), err)
		}
	}

	return result, nil
}

// recordSegments stores the scored segments of the tracked run in ctx.
func recordSegments(ctx context.Context, runs contract.RunStore, segments []schema.ScoredSegment) {
	runID := runIDFrom(ctx)
	if runs == nil || runID == 0 {
		return
	}
	if err := runs.RecordSegments(runID, segments); err != nil {
		logTrackingError("segment scores", runID, err)
	}
}

// endRun finalizes the tracked run in ctx.
func endRun(ctx context.Context, runs contract.RunStore, out runOutcome) {
	runID := runIDFrom(ctx)
	if runs == nil || runID == 0 {
		return
	}
	if err := runs.EndRun(runID, time.Now(), out.items, out.score); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// logTrackingError logs database tracking errors to stderr without disrupting analysis.
func logTrackingError(operation string, runID int64, err error) {
	contract.LogWarn(fmt.Sprintf("Analysis tracking failed for %s on run %d", operation, runID), err)
}

// runStoreOf returns the run store of mgr, or nil when tracking is disabled.
func runStoreOf(mgr contract.StoreManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}

// vaultOf returns the report vault of mgr, or nil when none is configured.
func vaultOf(mgr contract.StoreManager) contract.ReportVault {
	if mgr == nil {
		return nil
	}
	return mgr.GetVault()
}
