package outwriter

import (
	"fmt"

	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// LogAnalysisHeader prints a concise, 2-line header for an analysis.
// Machine-readable output on stdout stays clean, so the header is only printed for text output.
func LogAnalysisHeader(cfg *contract.Config, section schema.Section, items int) {
	if cfg.Output != schema.TextOut && cfg.Output != "" {
		return
	}

	// Line 1: The operation and embedder
	fmt.Printf("🔎 Analysis: %s (Embedder: %s/%s)\n", section, cfg.Embedder, cfg.EmbedModel)

	// Line 2: The amount of input
	fmt.Printf("📦 Input: %d items with %d workers\n", items, cfg.Workers)
}
