package iocache

import (
	"errors"
	"fmt"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/internal/parquet"
)

// ExecuteRunsExport exports the global run store to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	return ExportRuns(Manager.GetRunStore(), outputFile)
}

// ExportRuns writes every tracked run and segment score of store to
// <outputFile>.runs.parquet and <outputFile>.segments.parquet.
func ExportRuns(store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled; set --runs-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no tracked runs found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total segment scores: %d\n", status.TotalSegments)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	segments, err := store.GetAllSegments()
	if err != nil {
		return fmt.Errorf("failed to retrieve segment scores: %w", err)
	}

	runRows := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runRows), runsFile)

	segmentRows := parquet.ConvertSegmentRecords(segments)
	segmentsFile := outputFile + ".segments.parquet"
	if err := parquet.WriteSegmentsParquet(segmentRows, segmentsFile); err != nil {
		return fmt.Errorf("failed to write segment scores: %w", err)
	}
	fmt.Printf("Exported %d segment scores to: %s\n", len(segmentRows), segmentsFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Spark.")
	return nil
}
