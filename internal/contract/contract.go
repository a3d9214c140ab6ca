// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/ghsnap/schema"
)

// HostingClient defines the operations needed against the code-hosting API.
// This allows the collectors to be tested without network access.
type HostingClient interface {
	// ListOrgRepositories returns up to max public repositories of an organization,
	// in the order the API paginates them.
	ListOrgRepositories(ctx context.Context, org string, max int) ([]schema.RepositoryRecord, schema.Quota, error)

	// ListContributors returns up to max contributors of a repository along with
	// the true number of contributors.
	ListContributors(ctx context.Context, fullName string, max int) ([]schema.ContributorRecord, int, schema.Quota, error)

	// RateLimit returns the current core quota.
	RateLimit(ctx context.Context) (schema.Quota, error)
}

// HistoryManager defines the interface for managing the run history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking pipeline runs and per-org rollups.
type HistoryStore interface {
	// BeginRun creates a new run for a stage and returns its unique ID
	BeginRun(stage schema.Stage, dateToken string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, recordsWritten, skipped int) error

	// RecordOrgRollups stores one row per organization for a run
	RecordOrgRollups(runID int64, dateToken string, rollups map[string]schema.OrgRollup) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.PipelineRunRecord, error)

	// GetAllOrgSnapshots returns every recorded org rollup ordered by run and organization
	GetAllOrgSnapshots() ([]schema.OrgSnapshotRecord, error)

	// Close closes the underlying connection
	Close() error
}
