package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
)

// pipelineStage is one step of RunPipeline.
type pipelineStage struct {
	stage schema.Stage
	run   stageFunc
}

// pipelineStages lists the stages in execution order. Render is only
// included when a web directory is configured.
func pipelineStages(cfg *contract.Config, client contract.HostingClient) []pipelineStage {
	stages := []pipelineStage{
		{schema.CollectReposStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
			return runCollectRepos(ctx, cfg, client)
		}},
		{schema.CollectContributorsStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
			return runCollectContributors(ctx, cfg, client)
		}},
		{schema.SummarizeStage, func(ctx context.Context, tracker *stageTracker) (schema.StageResult, error) {
			return runSummarize(ctx, cfg, tracker)
		}},
		{schema.ValidateStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
			return runValidate(ctx, cfg)
		}},
	}
	if cfg.WebDir != "" {
		stages = append(stages, pipelineStage{schema.RenderStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
			return runRender(ctx, cfg)
		}})
	}
	stages = append(stages, pipelineStage{schema.SweepStage, func(ctx context.Context, _ *stageTracker) (schema.StageResult, error) {
		return runSweep(ctx, cfg)
	}})
	return stages
}

// RunPipeline runs every stage in order for the configured date. Each stage
// reads what the previous one wrote to disk. A stage error stops the pipeline;
// per-entity skips do not.
func RunPipeline(ctx context.Context, cfg *contract.Config, client contract.HostingClient, mgr contract.HistoryManager) error {
	start := time.Now()

	// The pipeline renders the summary it just wrote, not the newest on disk
	cfg = cfg.Clone()
	cfg.SummaryFile = cfg.SnapshotPath(schema.SummaryFilePrefix)
	cfg.SummaryFileSet = true
	cfg.RepoFile = cfg.SnapshotPath(schema.ReposFilePrefix)
	cfg.ContribInputFile = cfg.RepoFile
	cfg.ContribFile = cfg.SnapshotPath(schema.ContributionFilePrefix)

	if !shouldSuppressHeader(ctx) {
		_, _ = fmt.Fprintf(os.Stderr, "🚀 Pipeline for %s (%d organizations)\n", cfg.Date, len(cfg.Organizations))
	}
	ctx = withSuppressHeader(ctx)

	stages := pipelineStages(cfg, client)
	for i, s := range stages {
		_, _ = fmt.Fprintf(os.Stderr, "▶️  [%d/%d] %s\n", i+1, len(stages), s.stage)
		if err := executeStage(ctx, cfg, mgr, s.stage, s.run); err != nil {
			return fmt.Errorf("stage %s failed: %w", s.stage, err)
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "✅ Pipeline completed in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}
