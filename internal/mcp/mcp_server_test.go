package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	mcp_internal "github.com/huangsam/ghsnap/internal/mcp"
	"github.com/huangsam/ghsnap/internal/snapshot"
	"github.com/huangsam/ghsnap/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func setupServer(t *testing.T) (*server.MCPServer, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &contract.Config{OutputDir: dir, Date: "2024-03-02", Limit: 25}
	return mcp_internal.NewMCPServer(cfg), dir
}

func writeSummary(t *testing.T, dir, date string, report schema.SummaryReport, modTime time.Time) {
	t.Helper()
	path := snapshot.Path(dir, schema.SummaryFilePrefix, date)
	require.NoError(t, snapshot.WriteJSON(path, report))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func rankedReport(date string) schema.SummaryReport {
	return schema.SummaryReport{
		CollectionMetadata: schema.CollectionMetadata{CollectionDate: date, TotalRepositories: 3},
		RepositoryRankings: schema.RepositoryRankings{
			TopStarred: []schema.RankedRepository{
				{FullName: "acme/rocket", Stars: 30, Forks: 1},
				{FullName: "acme/anvil", Stars: 20, Forks: 9},
				{FullName: "acme/magnet", Stars: 10, Forks: 5, Language: strPtr("Go")},
			},
			TopForked: []schema.RankedRepository{
				{FullName: "acme/anvil", Stars: 20, Forks: 9},
				{FullName: "acme/magnet", Stars: 10, Forks: 5},
				{FullName: "acme/rocket", Stars: 30, Forks: 1},
			},
		},
	}
}

func TestGetSummary(t *testing.T) {
	s, dir := setupServer(t)
	base := time.Now().Add(-time.Hour)
	writeSummary(t, dir, "2024-03-01", rankedReport("2024-03-01"), base)
	writeSummary(t, dir, "2024-02-01", rankedReport("2024-02-01"), base.Add(time.Minute))

	t.Run("newest by modification time", func(t *testing.T) {
		res := callTool(t, s, "get_summary", map[string]any{})
		assert.False(t, res.IsError)

		var report schema.SummaryReport
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
		assert.Equal(t, "2024-02-01", report.CollectionMetadata.CollectionDate)
	})

	t.Run("by date", func(t *testing.T) {
		res := callTool(t, s, "get_summary", map[string]any{"date": "2024-03-01"})
		assert.False(t, res.IsError)
		assert.Contains(t, resultText(t, res), `"collection_date": "2024-03-01"`)
	})

	t.Run("missing date", func(t *testing.T) {
		res := callTool(t, s, "get_summary", map[string]any{"date": "2023-01-01"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "snapshot not found")
	})

	t.Run("invalid date", func(t *testing.T) {
		res := callTool(t, s, "get_summary", map[string]any{"date": "yesterday"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "invalid date")
	})
}

func TestGetSummaryWithoutSnapshots(t *testing.T) {
	s, _ := setupServer(t)
	res := callTool(t, s, "get_summary", map[string]any{})
	assert.True(t, res.IsError)
}

func TestGetTopRepositories(t *testing.T) {
	s, dir := setupServer(t)
	writeSummary(t, dir, "2024-03-01", rankedReport("2024-03-01"), time.Now())

	tests := []struct {
		name     string
		args     map[string]any
		expected []string
	}{
		{"default stars", map[string]any{}, []string{"acme/rocket", "acme/anvil", "acme/magnet"}},
		{"forks with limit", map[string]any{"by": "forks", "limit": 2.0}, []string{"acme/anvil", "acme/magnet"}},
		{"limit larger than ranking", map[string]any{"limit": 50.0}, []string{"acme/rocket", "acme/anvil", "acme/magnet"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, "get_top_repositories", tt.args)
			require.False(t, res.IsError)

			var ranked []schema.RankedRepository
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &ranked))
			var names []string
			for _, r := range ranked {
				names = append(names, r.FullName)
			}
			assert.Equal(t, tt.expected, names)
		})
	}

	t.Run("invalid ranking", func(t *testing.T) {
		res := callTool(t, s, "get_top_repositories", map[string]any{"by": "watchers"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "must be stars or forks")
	})
}

func TestGetTopContributors(t *testing.T) {
	s, dir := setupServer(t)

	t.Run("absent analysis", func(t *testing.T) {
		writeSummary(t, dir, "2024-03-01", rankedReport("2024-03-01"), time.Now().Add(-time.Hour))
		res := callTool(t, s, "get_top_contributors", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "no contribution analysis")
	})

	t.Run("limited", func(t *testing.T) {
		report := rankedReport("2024-03-02")
		report.ContributionAnalysis = &schema.ContributionAnalysis{
			TopContributors: []schema.ContributorSummary{
				{Login: "alice", TotalContributions: 30},
				{Login: "bob", TotalContributions: 20},
			},
		}
		writeSummary(t, dir, "2024-03-02", report, time.Now())

		res := callTool(t, s, "get_top_contributors", map[string]any{"limit": 1.0})
		require.False(t, res.IsError)
		var top []schema.ContributorSummary
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &top))
		require.Len(t, top, 1)
		assert.Equal(t, "alice", top[0].Login)
	})
}

func TestSummarizeSnapshots(t *testing.T) {
	s, dir := setupServer(t)

	t.Run("date is required", func(t *testing.T) {
		res := callTool(t, s, "summarize_snapshots", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "date is required")
	})

	t.Run("missing snapshot", func(t *testing.T) {
		res := callTool(t, s, "summarize_snapshots", map[string]any{"date": "2024-03-01"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "summarize failed")
	})

	t.Run("aggregates without writing", func(t *testing.T) {
		repos := []schema.RepositoryRecord{
			{Organization: "acme", Name: "rocket", FullName: "acme/rocket", Stars: 10, Language: strPtr("Go"), CollectionDate: "2024-03-01"},
			{Organization: "globex", Name: "anvil", FullName: "globex/anvil", Stars: 5, CollectionDate: "2024-03-01"},
		}
		require.NoError(t, snapshot.WriteJSON(snapshot.Path(dir, schema.ReposFilePrefix, "2024-03-01"), repos))

		res := callTool(t, s, "summarize_snapshots", map[string]any{"date": "2024-03-01"})
		require.False(t, res.IsError, resultText(t, res))

		var report schema.SummaryReport
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
		assert.Equal(t, 2, report.CollectionMetadata.TotalRepositories)
		assert.Equal(t, []string{"acme", "globex"}, report.CollectionMetadata.Organizations)
		assert.Equal(t, 15, report.RepositoryStatistics.TotalStars)
		assert.Nil(t, report.ContributionAnalysis)

		_, err := os.Stat(filepath.Join(dir, "github_summary_2024-03-01.json"))
		assert.True(t, os.IsNotExist(err), "summarize_snapshots must not write a summary")
	})
}
