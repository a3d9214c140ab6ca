package schema

import "time"

// PipelineRunRecord represents a row from the ghsnap_pipeline_runs table.
type PipelineRunRecord struct {
	RunID          int64
	Stage          string
	DateToken      string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	RecordsWritten int32
	Skipped        int32
	ConfigParams   *string
}

// OrgSnapshotRecord represents a row from the ghsnap_org_snapshots table.
type OrgSnapshotRecord struct {
	RunID           int64
	DateToken       string
	Organization    string
	Repositories    int32
	TotalStars      int32
	TotalForks      int32
	TotalOpenIssues int32
	MeanStars       float64
	MeanForks       float64
}
