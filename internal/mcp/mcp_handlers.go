package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/personalens/personalens/core"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	emb     contract.TextEmbedder
}

// decodeArg reads a structured argument. Objects and arrays are accepted as is,
// and a string is parsed as JSON for clients that can only send strings.
func decodeArg[T any](request mcp.CallToolRequest, key string) (T, error) {
	var out T
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return out, nil
	}
	var data []byte
	if s, isString := raw.(string); isString {
		data = []byte(s)
	} else {
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return out, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("invalid %s: %w", key, err)
	}
	return out, nil
}

// toolResult renders an analysis result or its error.
func toolResult(result any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func invalidArgs(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
}

func (h *toolHandler) handleAnalyzeDrift(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	textA := request.GetString("text_a", "")
	textB := request.GetString("text_b", "")

	return toolResult(core.GetDriftResults(core.WithSuppressHeader(ctx), cfg, h.mgr, h.emb, textA, textB))
}

func (h *toolHandler) handleAnalyzeDriftSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	texts, err := decodeArg[[]string](request, "texts")
	if err != nil {
		return invalidArgs(err)
	}

	return toolResult(core.GetDriftSetResults(core.WithSuppressHeader(ctx), cfg, h.mgr, h.emb, texts))
}

func (h *toolHandler) handleAnalyzeTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	items, err := decodeArg[[]schema.TimelineItem](request, "items")
	if err != nil {
		return invalidArgs(err)
	}
	if w := request.GetInt("window", 0); w > 0 {
		cfg.Window = w
	}
	if s := request.GetInt("stride", 0); s > 0 {
		cfg.Stride = s
	}

	return toolResult(core.GetTimelineResults(core.WithSuppressHeader(ctx), cfg, h.mgr, h.emb, items))
}

func (h *toolHandler) handleAnalyzeClusters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	texts, err := decodeArg[[]string](request, "texts")
	if err != nil {
		return invalidArgs(err)
	}
	if k := request.GetInt("k", 0); k > 0 {
		cfg.K = k
	}
	if _, ok := request.GetArguments()["seed"]; ok {
		cfg.Seed = int64(request.GetInt("seed", int(cfg.Seed)))
	}
	if m := request.GetInt("max_iter", 0); m > 0 {
		cfg.MaxIter = m
	}

	return toolResult(core.GetClustersResults(core.WithSuppressHeader(ctx), cfg, h.mgr, h.emb, texts))
}

// applyShiftArgs overrides the shift parameters present in the request.
func applyShiftArgs(cfg *contract.Config, request mcp.CallToolRequest) {
	if b := request.GetFloat("baseline_sec", 0); b > 0 {
		cfg.BaselineSec = b
	}
	if t := request.GetFloat("threshold", 0); t > 0 {
		cfg.Threshold = t
	}
}

func (h *toolHandler) handleAnalyzeAudioShift(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	segments, err := decodeArg[[]schema.Segment](request, "segments")
	if err != nil {
		return invalidArgs(err)
	}
	applyShiftArgs(cfg, request)
	cfg.UseEmbeddings = request.GetBool("use_embeddings", cfg.UseEmbeddings)
	cfg.Alpha = request.GetFloat("alpha", cfg.Alpha)

	return toolResult(core.GetAudioShiftResults(core.WithSuppressHeader(ctx), cfg, h.mgr, segments))
}

func (h *toolHandler) handleAnalyzeVideoShift(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	segments, err := decodeArg[[]schema.Segment](request, "segments")
	if err != nil {
		return invalidArgs(err)
	}
	frames, err := decodeArg[[]schema.FrameEmbedding](request, "frames")
	if err != nil {
		return invalidArgs(err)
	}
	applyShiftArgs(cfg, request)

	return toolResult(core.GetVideoShiftResults(core.WithSuppressHeader(ctx), cfg, h.mgr, segments, frames))
}

func (h *toolHandler) handleAnalyzeTextReasons(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	texts, err := decodeArg[[]string](request, "texts")
	if err != nil {
		return invalidArgs(err)
	}
	indices, err := decodeArg[[]int](request, "indices")
	if err != nil {
		return invalidArgs(err)
	}

	return toolResult(core.GetReasonsResults(core.WithSuppressHeader(ctx), cfg, h.mgr, h.emb, texts, indices))
}

func (h *toolHandler) handleAnalyzeTextSignals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	text := request.GetString("text", "")

	return toolResult(core.GetSignalsResults(core.WithSuppressHeader(ctx), cfg, h.mgr, text))
}

// vaultSnapshot is one saved section as returned by get_report_vault.
type vaultSnapshot struct {
	Section schema.Section  `json:"section"`
	SavedAt string          `json:"savedAt"`
	Payload json.RawMessage `json:"payload"`
}

func (h *toolHandler) handleGetReportVault(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetVault() == nil {
		return mcp.NewToolResultError("report vault is not configured"), nil
	}
	entries, err := h.mgr.GetVault().GetAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read report vault: %v", err)), nil
	}

	only := schema.Section(request.GetString("section", ""))
	snapshots := []vaultSnapshot{}
	for section, e := range entries {
		if only != "" && section != only {
			continue
		}
		snapshots = append(snapshots, vaultSnapshot{
			Section: section,
			SavedAt: e.SavedAt.Format(contract.DateTimeFormat),
			Payload: e.Payload,
		})
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Section < snapshots[j].Section })

	jsonData, _ := json.MarshalIndent(snapshots, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
