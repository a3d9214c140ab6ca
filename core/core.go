// Package core has the stage logic for collecting, summarizing, validating,
// rendering and sweeping organization snapshots.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/internal/outwriter"
	"github.com/huangsam/ghsnap/internal/parquet"
	"github.com/huangsam/ghsnap/internal/render"
	"github.com/huangsam/ghsnap/internal/snapshot"
	"github.com/huangsam/ghsnap/schema"
)

// DashboardFile is the name of the rendered dashboard inside the web directory.
const DashboardFile = "index.html"

// ExecuteCollectRepos fetches the repositories of every configured organization
// and writes the repository snapshot for the configured date.
func ExecuteCollectRepos(ctx context.Context, cfg *contract.Config, client contract.HostingClient, mgr contract.HistoryManager) error {
	return executeStage(ctx, cfg, mgr, schema.CollectReposStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
		return runCollectRepos(ctx, cfg, client)
	})
}

// ExecuteCollectContributors samples the repository snapshot and writes the
// contribution snapshot for the configured date.
func ExecuteCollectContributors(ctx context.Context, cfg *contract.Config, client contract.HostingClient, mgr contract.HistoryManager) error {
	return executeStage(ctx, cfg, mgr, schema.CollectContributorsStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
		return runCollectContributors(ctx, cfg, client)
	})
}

// ExecuteSummarize builds the summary report, writes it next to the snapshots
// and prints it with the configured output format.
func ExecuteSummarize(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeStage(ctx, cfg, mgr, schema.SummarizeStage, func(ctx context.Context, tracker *stageTracker) (schema.StageResult, error) {
		return runSummarize(ctx, cfg, tracker)
	})
}

// ExecuteValidate prints the quality report of the repository snapshot.
func ExecuteValidate(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeStage(ctx, cfg, mgr, schema.ValidateStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
		return runValidate(ctx, cfg)
	})
}

// ExecuteRender writes the HTML dashboard for a summary report.
func ExecuteRender(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeStage(ctx, cfg, mgr, schema.RenderStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
		return runRender(ctx, cfg)
	})
}

// ExecuteSweep deletes snapshots older than the retention horizon.
func ExecuteSweep(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	return executeStage(ctx, cfg, mgr, schema.SweepStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
		return runSweep(ctx, cfg)
	})
}

// ExecuteExport writes the snapshots of the configured date as Parquet files.
// The contribution snapshot is optional.
func ExecuteExport(ctx context.Context, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	logger := loggerFrom(ctx)

	repos, err := snapshot.ReadRepositories(cfg.RepoFile)
	if err != nil {
		return fmt.Errorf("failed to load repository snapshot: %w", err)
	}
	reposFile := cfg.OutputFile + ".repositories.parquet"
	if err := parquet.WriteRepositoriesParquet(parquet.ConvertRepositories(repos), reposFile); err != nil {
		return fmt.Errorf("failed to write repositories: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Exported %d repositories to: %s\n", len(repos), reposFile)

	if !snapshot.Exists(cfg.ContribFile) {
		logger.WithField(logging.FieldFile, cfg.ContribFile).Warn("Contribution snapshot not found, skipping")
		return nil
	}
	contribs, err := snapshot.ReadContributions(cfg.ContribFile)
	if err != nil {
		return fmt.Errorf("failed to load contribution snapshot: %w", err)
	}
	rows := parquet.ConvertContributions(contribs)
	contribFile := cfg.OutputFile + ".contributors.parquet"
	if err := parquet.WriteContributorsParquet(rows, contribFile); err != nil {
		return fmt.Errorf("failed to write contributors: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Exported %d contributor rows to: %s\n", len(rows), contribFile)
	return nil
}

// stageFunc runs the body of one stage.
type stageFunc func(ctx context.Context, tracker *stageTracker) (schema.StageResult, error)

// executeStage wraps a stage with its header, history tracking and result report.
func executeStage(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager, stage schema.Stage, run stageFunc) error {
	start := time.Now()
	logStageHeader(ctx, cfg, stage)

	tracker := beginStage(cfg, mgr, stage)
	result, err := run(ctx, tracker)
	result.Stage = stage
	tracker.end(result)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteStageResult(result, cfg, time.Since(start))
}

// logStageHeader prints a concise header for each stage unless suppressed.
func logStageHeader(ctx context.Context, cfg *contract.Config, stage schema.Stage) {
	if shouldSuppressHeader(ctx) {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "🔎 Stage: %s (Date: %s)\n", stage, cfg.Date)
	switch stage {
	case schema.CollectReposStage:
		_, _ = fmt.Fprintf(os.Stderr, "🏢 Organizations: %s\n", strings.Join(cfg.Organizations, ", "))
	case schema.SweepStage:
		_, _ = fmt.Fprintf(os.Stderr, "🧹 Retention: %d days in %s\n", cfg.RetentionDays, cfg.OutputDir)
	}
}

func newBackpressure(ctx context.Context, cfg *contract.Config) *Backpressure {
	return NewBackpressure(cfg.QuotaThreshold, contract.DefaultQuotaResetBuffer, loggerFrom(ctx))
}

// finalQuota reads the quota once a collector is done, for display only.
func finalQuota(ctx context.Context, client contract.HostingClient) *schema.Quota {
	quota, err := client.RateLimit(ctx)
	if err != nil {
		loggerFrom(ctx).WithError(err).Debug("Failed to read final rate limit")
		return nil
	}
	return &quota
}

func runCollectRepos(ctx context.Context, cfg *contract.Config, client contract.HostingClient) (schema.StageResult, error) {
	path := cfg.SnapshotPath(schema.ReposFilePrefix)
	records, skips, err := CollectRepositories(ctx, client, RepoCollectOptions{
		Organizations: cfg.Organizations,
		MaxRepos:      cfg.MaxRepos,
		DateToken:     cfg.Date,
		Backpressure:  newBackpressure(ctx, cfg),
	})
	result := schema.StageResult{Path: path, Skips: skips}
	if err != nil {
		return result, err
	}
	if err := snapshot.WriteJSON(path, records); err != nil {
		return result, fmt.Errorf("failed to write repository snapshot: %w", err)
	}
	result.RecordsWritten = len(records)
	result.Quota = finalQuota(ctx, client)
	return result, nil
}

func runCollectContributors(ctx context.Context, cfg *contract.Config, client contract.HostingClient) (schema.StageResult, error) {
	path := cfg.SnapshotPath(schema.ContributionFilePrefix)
	result := schema.StageResult{Path: path}

	repos, err := snapshot.ReadRepositories(cfg.ContribInputFile)
	if err != nil {
		return result, fmt.Errorf("failed to load repository snapshot: %w", err)
	}
	contribs, skips, err := CollectContributions(ctx, client, repos, ContribCollectOptions{
		SampleRepos:     cfg.SampleRepos,
		MaxContributors: cfg.MaxContributors,
		CheckEvery:      cfg.QuotaCheckEvery,
		DateToken:       cfg.Date,
		Backpressure:    newBackpressure(ctx, cfg),
	})
	result.Skips = skips
	if err != nil {
		return result, err
	}
	if err := snapshot.WriteJSON(path, contribs); err != nil {
		return result, fmt.Errorf("failed to write contribution snapshot: %w", err)
	}
	result.RecordsWritten = len(contribs)
	result.Quota = finalQuota(ctx, client)
	return result, nil
}

// loadSummaryInputs reads the repository snapshot and, when present, the
// contribution snapshot. A missing contribution snapshot is not an error.
func loadSummaryInputs(ctx context.Context, cfg *contract.Config) ([]schema.RepositoryRecord, []schema.RepositoryContribution, error) {
	repos, err := snapshot.ReadRepositories(cfg.RepoFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load repository snapshot: %w", err)
	}
	if cfg.ContribFile == "" || !snapshot.Exists(cfg.ContribFile) {
		loggerFrom(ctx).WithField(logging.FieldFile, cfg.ContribFile).Warn("Contribution snapshot not found, summarizing without contributors")
		return repos, nil, nil
	}
	contribs, err := snapshot.ReadContributions(cfg.ContribFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load contribution snapshot: %w", err)
	}
	return repos, contribs, nil
}

// SummarizeSnapshots summarizes the snapshot files of the configured date without
// writing anything. The collection date comes from the records, or from the
// configured date when there are none.
func SummarizeSnapshots(ctx context.Context, cfg *contract.Config) (schema.SummaryReport, error) {
	repos, contribs, err := loadSummaryInputs(ctx, cfg)
	if err != nil {
		return schema.SummaryReport{}, err
	}
	opts := DefaultSummaryOptions(time.Now().UTC(), "")
	if len(repos) == 0 {
		opts.CollectionDate = cfg.Date
	}
	return Summarize(repos, contribs, opts), nil
}

func runSummarize(ctx context.Context, cfg *contract.Config, tracker *stageTracker) (schema.StageResult, error) {
	start := time.Now()
	result := schema.StageResult{Path: cfg.SummaryFile}

	report, err := SummarizeSnapshots(ctx, cfg)
	if err != nil {
		return result, err
	}
	if err := snapshot.WriteJSON(cfg.SummaryFile, report); err != nil {
		return result, fmt.Errorf("failed to write summary: %w", err)
	}
	result.RecordsWritten = report.CollectionMetadata.TotalRepositories
	tracker.recordRollups(report.CollectionMetadata.CollectionDate, report.OrganizationBreakdown)

	if err := outwriter.NewOutWriter().WriteSummary(report, cfg, time.Since(start)); err != nil {
		return result, fmt.Errorf("failed to print summary: %w", err)
	}
	return result, nil
}

func runValidate(ctx context.Context, cfg *contract.Config) (schema.StageResult, error) {
	start := time.Now()
	result := schema.StageResult{Path: cfg.RepoFile}

	repos, err := snapshot.ReadRepositories(cfg.RepoFile)
	if err != nil {
		return result, fmt.Errorf("failed to load repository snapshot: %w", err)
	}
	report, err := ValidateQuality(repos, cfg.OutputDir)
	if err != nil {
		return result, err
	}
	if report.Status != schema.QualityOK {
		loggerFrom(ctx).WithField(logging.FieldFile, cfg.RepoFile).Warn(report.Message)
	}
	result.RecordsWritten = report.TotalRecords

	if err := outwriter.NewOutWriter().WriteQuality(report, cfg, time.Since(start)); err != nil {
		return result, fmt.Errorf("failed to print quality report: %w", err)
	}
	return result, nil
}

// summaryPath returns the summary to render: the configured one when given,
// otherwise the newest summary in the output directory.
func summaryPath(cfg *contract.Config) (string, error) {
	if cfg.SummaryFileSet {
		return cfg.SummaryFile, nil
	}
	return snapshot.LatestSummary(cfg.OutputDir)
}

func runRender(ctx context.Context, cfg *contract.Config) (schema.StageResult, error) {
	target := filepath.Join(cfg.WebDir, DashboardFile)
	result := schema.StageResult{Path: target}

	source, err := summaryPath(cfg)
	if err != nil {
		return result, err
	}
	report, err := snapshot.ReadSummary(source)
	if err != nil {
		return result, fmt.Errorf("failed to load summary: %w", err)
	}
	page, err := render.Dashboard(report)
	if err != nil {
		return result, fmt.Errorf("failed to render dashboard: %w", err)
	}
	if err := snapshot.WriteFile(target, page); err != nil {
		return result, fmt.Errorf("failed to write dashboard: %w", err)
	}
	loggerFrom(ctx).WithField(logging.FieldFile, source).Info("Rendered dashboard")
	result.RecordsWritten = 1
	return result, nil
}

func runSweep(ctx context.Context, cfg *contract.Config) (schema.StageResult, error) {
	result := schema.StageResult{Path: cfg.OutputDir}
	deleted, skips, err := Sweep(ctx, cfg.OutputDir, cfg.Reference, cfg.RetentionDays)
	result.Skips = skips
	if err != nil {
		return result, err
	}
	result.RecordsWritten = len(deleted)
	return result, nil
}
