// Package parquet provides data structures and functions for exporting ghsnap
// snapshots and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/ghsnap/schema"
	"github.com/parquet-go/parquet-go"
)

// Repository is one row of a repository snapshot.
type Repository struct {
	CollectionDate string `parquet:"collection_date,snappy"`
	Organization   string `parquet:"organization,snappy"`
	Name           string `parquet:"name,snappy"`
	FullName       string `parquet:"full_name,snappy"`

	// Description, Language and License are nullable
	Description *string `parquet:"description,optional,snappy"`
	Language    *string `parquet:"language,optional,snappy"`
	License     *string `parquet:"license,optional,snappy"`

	Stars      int32 `parquet:"stars,snappy"`
	Forks      int32 `parquet:"forks,snappy"`
	Watchers   int32 `parquet:"watchers,snappy"`
	OpenIssues int32 `parquet:"open_issues,snappy"`
	SizeKB     int32 `parquet:"size_kb,snappy"`

	Topics []string `parquet:"topics"`

	CreatedAt *time.Time `parquet:"created_at,optional,snappy"`
	UpdatedAt *time.Time `parquet:"updated_at,optional,snappy"`
	PushedAt  *time.Time `parquet:"pushed_at,optional,snappy"`

	Archived  bool `parquet:"archived"`
	HasWiki   bool `parquet:"has_wiki"`
	HasPages  bool `parquet:"has_pages"`
	HasIssues bool `parquet:"has_issues"`

	CollectionTimestamp time.Time `parquet:"collection_timestamp,snappy"`
}

// Contributor is one (repository, login) row of a contribution snapshot.
type Contributor struct {
	CollectionDate    string `parquet:"collection_date,snappy"`
	RepoFullName      string `parquet:"repo_full_name,snappy"`
	Organization      string `parquet:"organization,snappy"`
	Login             string `parquet:"login,snappy"`
	Contributions     int32  `parquet:"contributions,snappy"`
	TotalContributors int32  `parquet:"total_contributors,snappy"`
	Type              string `parquet:"type,snappy"`
	SiteAdmin         bool   `parquet:"site_admin"`
}

// RankedRepository is one row of a summary ranking.
type RankedRepository struct {
	Ranking      string  `parquet:"ranking,snappy"` // stars or forks
	Rank         int32   `parquet:"rank,snappy"`
	FullName     string  `parquet:"full_name,snappy"`
	Organization string  `parquet:"organization,snappy"`
	Stars        int32   `parquet:"stars,snappy"`
	Forks        int32   `parquet:"forks,snappy"`
	Language     *string `parquet:"language,optional,snappy"`
}

// PipelineRun maps to the ghsnap_pipeline_runs database table.
type PipelineRun struct {
	// RunID is the unique identifier for this stage run
	RunID int64 `parquet:"run_id,snappy"`

	Stage     string `parquet:"stage,snappy"`
	DateToken string `parquet:"date_token,snappy"`

	// StartTime is stored as TIMESTAMP with nanosecond precision
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime and RunDurationMs are nil while a run is still open
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`

	RecordsWritten int32 `parquet:"records_written,snappy"`
	Skipped        int32 `parquet:"skipped,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// OrgSnapshot maps to the ghsnap_org_snapshots database table.
type OrgSnapshot struct {
	RunID           int64   `parquet:"run_id,snappy"`
	DateToken       string  `parquet:"date_token,snappy"`
	Organization    string  `parquet:"organization,snappy"`
	Repositories    int32   `parquet:"repositories,snappy"`
	TotalStars      int32   `parquet:"total_stars,snappy"`
	TotalForks      int32   `parquet:"total_forks,snappy"`
	TotalOpenIssues int32   `parquet:"total_open_issues,snappy"`
	MeanStars       float64 `parquet:"mean_stars,snappy"`
	MeanForks       float64 `parquet:"mean_forks,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRepositoriesParquet writes repository rows to a Parquet file.
func WriteRepositoriesParquet(data []Repository, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteContributorsParquet writes contributor rows to a Parquet file.
func WriteContributorsParquet(data []Contributor, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRankingsParquet writes summary ranking rows to a Parquet file.
func WriteRankingsParquet(data []RankedRepository, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePipelineRunsParquet writes pipeline run rows to a Parquet file.
func WritePipelineRunsParquet(data []PipelineRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteOrgSnapshotsParquet writes org snapshot rows to a Parquet file.
func WriteOrgSnapshotsParquet(data []OrgSnapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRepositories converts a repository snapshot for Parquet export.
func ConvertRepositories(records []schema.RepositoryRecord) []Repository {
	result := make([]Repository, len(records))
	for i, r := range records {
		result[i] = Repository{
			CollectionDate:      r.CollectionDate,
			Organization:        r.Organization,
			Name:                r.Name,
			FullName:            r.FullName,
			Description:         r.Description,
			Language:            r.Language,
			License:             r.License,
			Stars:               int32(r.Stars),
			Forks:               int32(r.Forks),
			Watchers:            int32(r.Watchers),
			OpenIssues:          int32(r.OpenIssues),
			SizeKB:              int32(r.Size),
			Topics:              r.Topics,
			CreatedAt:           r.CreatedAt,
			UpdatedAt:           r.UpdatedAt,
			PushedAt:            r.PushedAt,
			Archived:            r.Archived,
			HasWiki:             r.HasWiki,
			HasPages:            r.HasPages,
			HasIssues:           r.HasIssues,
			CollectionTimestamp: r.CollectionTimestamp,
		}
	}
	return result
}

// ConvertContributions flattens a contribution snapshot to one row per repository and login.
func ConvertContributions(records []schema.RepositoryContribution) []Contributor {
	var result []Contributor
	for _, repo := range records {
		for _, c := range repo.Contributors {
			result = append(result, Contributor{
				CollectionDate:    repo.CollectionDate,
				RepoFullName:      repo.RepoFullName,
				Organization:      repo.Organization,
				Login:             c.Login,
				Contributions:     int32(c.Contributions),
				TotalContributors: int32(repo.TotalContributors),
				Type:              c.Type,
				SiteAdmin:         c.SiteAdmin,
			})
		}
	}
	return result
}

// ConvertRankings flattens both summary rankings, stars first, keeping rank order.
func ConvertRankings(rankings schema.RepositoryRankings) []RankedRepository {
	result := make([]RankedRepository, 0, len(rankings.TopStarred)+len(rankings.TopForked))
	for _, group := range []struct {
		name  string
		repos []schema.RankedRepository
	}{
		{"stars", rankings.TopStarred},
		{"forks", rankings.TopForked},
	} {
		for i, r := range group.repos {
			result = append(result, RankedRepository{
				Ranking:      group.name,
				Rank:         int32(i + 1),
				FullName:     r.FullName,
				Organization: r.Organization,
				Stars:        int32(r.Stars),
				Forks:        int32(r.Forks),
				Language:     r.Language,
			})
		}
	}
	return result
}

// ConvertPipelineRunRecords converts schema.PipelineRunRecord to PipelineRun for Parquet export.
func ConvertPipelineRunRecords(records []schema.PipelineRunRecord) []PipelineRun {
	result := make([]PipelineRun, len(records))
	for i, record := range records {
		result[i] = PipelineRun{
			RunID:          record.RunID,
			Stage:          record.Stage,
			DateToken:      record.DateToken,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			RecordsWritten: record.RecordsWritten,
			Skipped:        record.Skipped,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertOrgSnapshotRecords converts schema.OrgSnapshotRecord to OrgSnapshot for Parquet export.
func ConvertOrgSnapshotRecords(records []schema.OrgSnapshotRecord) []OrgSnapshot {
	result := make([]OrgSnapshot, len(records))
	for i, record := range records {
		result[i] = OrgSnapshot(record)
	}
	return result
}
