// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the ghsnap MCP server without starting it.
// This is exposed for unit testing. No tool reaches the hosting API; every tool
// reads the snapshot files under the configured output directory.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"ghsnap Snapshot Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg}

	// --- 1. Tool: get_summary ---
	s.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Return a stored summary report: the newest one, or the one for a date."),
		mcp.WithString("date", mcp.Description("Collection date (YYYY-MM-DD). Defaults to the newest summary.")),
	), h.handleGetSummary)

	// --- 2. Tool: get_top_repositories ---
	s.AddTool(mcp.NewTool("get_top_repositories",
		mcp.WithDescription("Return the top repositories of a stored summary, ranked by stars or forks."),
		mcp.WithString("by", mcp.Description("Ranking to use. Defaults to 'stars'."), mcp.Enum("stars", "forks")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithString("date", mcp.Description("Collection date (YYYY-MM-DD). Defaults to the newest summary.")),
	), h.handleGetTopRepositories)

	// --- 3. Tool: get_top_contributors ---
	s.AddTool(mcp.NewTool("get_top_contributors",
		mcp.WithDescription("Return the top contributors across the sampled repositories of a stored summary."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithString("date", mcp.Description("Collection date (YYYY-MM-DD). Defaults to the newest summary.")),
	), h.handleGetTopContributors)

	// --- 4. Tool: summarize_snapshots ---
	s.AddTool(mcp.NewTool("summarize_snapshots",
		mcp.WithDescription("Aggregate the raw snapshots of a date into a summary report without writing it."),
		mcp.WithString("date", mcp.Description("Collection date (YYYY-MM-DD)."), mcp.Required()),
	), h.handleSummarizeSnapshots)

	return s
}

// StartMCPServer starts the ghsnap MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
