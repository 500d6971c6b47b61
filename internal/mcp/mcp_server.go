// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/personalens/personalens/core"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// sectionNames lists the vault sections for the get_report_vault enum.
func sectionNames() []string {
	names := make([]string, len(schema.AllSections))
	for i, s := range schema.AllSections {
		names[i] = string(s)
	}
	return names
}

// NewMCPServer initializes and configures the PersonaLens MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, emb contract.TextEmbedder) *server.MCPServer {
	s := server.NewMCPServer(
		"PersonaLens Consistency Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		emb:     emb,
	}

	// --- 1. Tool: analyze_drift ---
	s.AddTool(mcp.NewTool("analyze_drift",
		mcp.WithDescription("Measure the semantic drift between two texts."),
		mcp.WithString("text_a", mcp.Description("The reference text."), mcp.Required()),
		mcp.WithString("text_b", mcp.Description("The text compared with the reference."), mcp.Required()),
	), h.handleAnalyzeDrift)

	// --- 2. Tool: analyze_drift_set ---
	s.AddTool(mcp.NewTool("analyze_drift_set",
		mcp.WithDescription("Measure how far each text of a set sits from the set centroid."),
		mcp.WithArray("texts", mcp.Description("The texts (at least 2)."), mcp.WithStringItems(), mcp.Required()),
	), h.handleAnalyzeDriftSet)

	// --- 3. Tool: analyze_timeline ---
	s.AddTool(mcp.NewTool("analyze_timeline",
		mcp.WithDescription("Compute pairwise and rolling-window drift over dated texts."),
		mcp.WithArray("items", mcp.Description("Entries of the form {\"date\": \"YYYY-MM-DD\", \"text\": \"...\"}."), mcp.Required()),
		mcp.WithNumber("window", mcp.Description("Rolling window size (>= 2). Defaults to 3.")),
		mcp.WithNumber("stride", mcp.Description("Step between windows (>= 1). Defaults to 1.")),
	), h.handleAnalyzeTimeline)

	// --- 4. Tool: analyze_clusters ---
	s.AddTool(mcp.NewTool("analyze_clusters",
		mcp.WithDescription("Group texts into k clusters with seeded k-means and label each cluster."),
		mcp.WithArray("texts", mcp.Description("The texts to cluster."), mcp.WithStringItems(), mcp.Required()),
		mcp.WithNumber("k", mcp.Description("Number of clusters. Defaults to 3.")),
		mcp.WithNumber("seed", mcp.Description("Random seed. Defaults to 42.")),
		mcp.WithNumber("max_iter", mcp.Description("Iteration cap. Defaults to 25.")),
	), h.handleAnalyzeClusters)

	// --- 5. Tool: analyze_audio_shift ---
	s.AddTool(mcp.NewTool("analyze_audio_shift",
		mcp.WithDescription("Score audio segments against the speaker's own opening baseline."),
		mcp.WithArray("segments", mcp.Description("Segments with startMs, endMs, prosody {rms, zcr, pauseRatio, pitchHz} and optional embedding."), mcp.Required()),
		mcp.WithBoolean("use_embeddings", mcp.Description("Fuse the prosody branch with segment embeddings.")),
		mcp.WithNumber("alpha", mcp.Description("Prosody weight in the fusion (0..1). Defaults to 0.5.")),
		mcp.WithNumber("baseline_sec", mcp.Description("Baseline length in seconds. Defaults to 20.")),
		mcp.WithNumber("threshold", mcp.Description("Spike threshold on the z-score. Defaults to 1.25.")),
	), h.handleAnalyzeAudioShift)

	// --- 6. Tool: analyze_video_shift ---
	s.AddTool(mcp.NewTool("analyze_video_shift",
		mcp.WithDescription("Score visual segment embeddings against the opening baseline."),
		mcp.WithArray("segments", mcp.Description("Segments with startMs, endMs and embedding.")),
		mcp.WithArray("frames", mcp.Description("Per-frame embeddings {timeMs, embedding}, pooled into 4 s segments when no segments are given.")),
		mcp.WithNumber("baseline_sec", mcp.Description("Baseline length in seconds. Defaults to 20.")),
		mcp.WithNumber("threshold", mcp.Description("Spike threshold on the z-score. Defaults to 1.25.")),
	), h.handleAnalyzeVideoShift)

	// --- 7. Tool: analyze_text_reasons ---
	s.AddTool(mcp.NewTool("analyze_text_reasons",
		mcp.WithDescription("Explain each text with reason tags, keywords and lexical signals."),
		mcp.WithArray("texts", mcp.Description("The texts to explain."), mcp.WithStringItems(), mcp.Required()),
		mcp.WithArray("indices", mcp.Description("Optional subset of text indices to explain.")),
	), h.handleAnalyzeTextReasons)

	// --- 8. Tool: analyze_text_signals ---
	s.AddTool(mcp.NewTool("analyze_text_signals",
		mcp.WithDescription("Count metric, buzzword, hedge and absolute signals in one text."),
		mcp.WithString("text", mcp.Description("The text to analyze."), mcp.Required()),
	), h.handleAnalyzeTextSignals)

	// --- 9. Tool: get_report_vault ---
	s.AddTool(mcp.NewTool("get_report_vault",
		mcp.WithDescription("Return the latest saved report of every analysis section."),
		mcp.WithString("section", mcp.Description("Only return this section."), mcp.Enum(sectionNames()...)),
	), h.handleGetReportVault)

	return s
}

// StartMCPServer starts the PersonaLens MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	emb, closeFn, err := core.NewEmbedder(baseCfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	s := NewMCPServer(baseCfg, mgr, emb)
	return server.ServeStdio(s)
}
