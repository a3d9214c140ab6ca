package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the console output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// SkipKind represents the kind of entity that was skipped.
	SkipKind string

	// LogFormat represents the log encoding.
	LogFormat string

	// Stage represents a pipeline stage.
	Stage string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All skip kinds.
const (
	OrganizationSkip SkipKind = "organization"
	RepositorySkip   SkipKind = "repository"
	FileSkip         SkipKind = "file"
)

// All log formats supported.
const (
	TextLog LogFormat = "text" // default
	JSONLog LogFormat = "json"
)

// Pipeline stages in execution order.
const (
	CollectReposStage        Stage = "collect_repos"
	CollectContributorsStage Stage = "collect_contributors"
	SummarizeStage           Stage = "summarize"
	ValidateStage            Stage = "validate"
	RenderStage              Stage = "render"
	SweepStage               Stage = "sweep"
)

// UnknownBucket is the histogram bucket for records without a value.
const UnknownBucket = "unknown"

// DateLayout is the layout of the date token embedded in snapshot file names.
const DateLayout = "2006-01-02"

// Snapshot file name prefixes.
const (
	ReposFilePrefix        = "repos_raw"
	ContributionFilePrefix = "contributions"
	SummaryFilePrefix      = "github_summary"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidLogFormats lists all valid log formats.
var ValidLogFormats = map[LogFormat]struct{}{
	TextLog: {},
	JSONLog: {},
}
