package schema

import "time"

// Quality report statuses.
const (
	QualityOK    = "ok"
	QualityError = "error"
)

// QualityReport describes the health of one repository snapshot.
type QualityReport struct {
	Status       string         `json:"status" yaml:"status"`
	Message      string         `json:"message,omitempty" yaml:"message,omitempty"`
	TotalRecords int            `json:"total_records" yaml:"total_records"`
	Duplicates   int            `json:"duplicates" yaml:"duplicates"`
	MissingData  map[string]int `json:"missing_data" yaml:"missing_data"`
	DateRange    DateRange      `json:"date_range" yaml:"date_range"`
	OutputFiles  []FileInfo     `json:"output_files" yaml:"output_files"`
}

// DateRange holds the creation and update bounds of a snapshot.
type DateRange struct {
	EarliestCreated *time.Time `json:"earliest_created" yaml:"earliest_created"`
	LatestUpdated   *time.Time `json:"latest_updated" yaml:"latest_updated"`
}

// FileInfo describes a file in the output directory.
type FileInfo struct {
	Name     string    `json:"name" yaml:"name"`
	Size     int64     `json:"size" yaml:"size"`
	Modified time.Time `json:"modified" yaml:"modified"`
}
