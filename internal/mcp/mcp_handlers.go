package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/ghsnap/core"
	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/internal/snapshot"
	"github.com/huangsam/ghsnap/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// loadSummary reads the summary for date, or the newest summary when date is empty.
func (h *toolHandler) loadSummary(date string) (schema.SummaryReport, error) {
	if date == "" {
		path, err := snapshot.LatestSummary(h.baseCfg.OutputDir)
		if err != nil {
			return schema.SummaryReport{}, err
		}
		return snapshot.ReadSummary(path)
	}
	cfg, err := h.baseCfg.CloneWithDate(date)
	if err != nil {
		return schema.SummaryReport{}, err
	}
	return snapshot.ReadSummary(cfg.SummaryFile)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func limitFrom(request mcp.CallToolRequest, fallback int) int {
	if l := request.GetInt("limit", 0); l > 0 {
		return l
	}
	return fallback
}

func (h *toolHandler) handleGetSummary(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.loadSummary(request.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load summary: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleGetTopRepositories(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	by := request.GetString("by", "stars")
	report, err := h.loadSummary(request.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load summary: %v", err)), nil
	}

	var ranked []schema.RankedRepository
	switch by {
	case "stars":
		ranked = report.RepositoryRankings.TopStarred
	case "forks":
		ranked = report.RepositoryRankings.TopForked
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid ranking %q: must be stars or forks", by)), nil
	}
	limit := limitFrom(request, h.baseCfg.Limit)
	return jsonResult(ranked[:min(len(ranked), limit)])
}

func (h *toolHandler) handleGetTopContributors(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.loadSummary(request.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load summary: %v", err)), nil
	}
	if report.ContributionAnalysis == nil {
		return mcp.NewToolResultError("summary has no contribution analysis"), nil
	}
	top := report.ContributionAnalysis.TopContributors
	limit := limitFrom(request, h.baseCfg.Limit)
	return jsonResult(top[:min(len(top), limit)])
}

func (h *toolHandler) handleSummarizeSnapshots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := request.GetString("date", "")
	if date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}
	cfg, err := h.baseCfg.CloneWithDate(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date: %v", err)), nil
	}

	report, err := core.SummarizeSnapshots(core.WithLogger(ctx, logging.Discard()), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summarize failed: %v", err)), nil
	}
	return jsonResult(report)
}
