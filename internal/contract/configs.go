package contract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/ghsnap/schema"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultOutputDir        = "data"
	DefaultWebDir           = "web"
	DefaultMaxRepos         = 50
	DefaultSampleRepos      = 30
	DefaultMaxContributors  = 20
	DefaultQuotaThreshold   = 100
	DefaultQuotaCheckEvery  = 10
	DefaultRetentionDays    = 7
	DefaultResultLimit      = 25
	MaxResultLimit          = 1000
	DefaultLogLevel         = "info"
	DefaultQuotaResetBuffer = 60 * time.Second
)

// DefaultOrganizations are monitored when no organizations are configured.
var DefaultOrganizations = []string{"apache", "kubernetes", "tensorflow", "microsoft"}

// Sentinel configuration errors.
var (
	ErrMissingToken = errors.New("missing API token: set GITHUB_TOKEN or GHSNAP_TOKEN")
	ErrInvalidDate  = errors.New("invalid date: expected YYYY-MM-DD")
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for every stage.
// This struct is the "final, validated" config.
type Config struct {
	Token         string // Please use env var as this is plaintext
	Organizations []string
	OutputDir     string
	Date          string    // YYYY-MM-DD token shared by all snapshot files of a run
	Reference     time.Time // Date at midnight UTC

	MaxRepos        int
	SampleRepos     int
	MaxContributors int
	QuotaThreshold  int
	QuotaCheckEvery int
	Progress        bool

	RepoFile         string
	ContribInputFile string
	ContribFile      string
	SummaryFile      string
	SummaryFileSet   bool // render uses the newest summary unless set
	WebDir           string

	RetentionDays int

	Output     schema.OutputMode
	OutputFile string
	Limit      int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	LogLevel  logrus.Level
	LogFormat schema.LogFormat
}

// ReposRawInput holds the flags of the repository collector.
type ReposRawInput struct {
	MaxRepos int `mapstructure:"max-repos"`
}

// ContributorsRawInput holds the flags of the contributor collector.
type ContributorsRawInput struct {
	InputFile       string `mapstructure:"input-file"`
	MaxRepos        int    `mapstructure:"max-repos"`
	MaxContributors int    `mapstructure:"max-contributors"`
	CheckEvery      int    `mapstructure:"check-every"`
	Progress        bool   `mapstructure:"progress"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Token            string   `mapstructure:"token"`
	Organizations    []string `mapstructure:"organizations"`
	OutputDir        string   `mapstructure:"output-dir"`
	Date             string   `mapstructure:"date"`
	Output           string   `mapstructure:"output"`
	OutputFile       string   `mapstructure:"output-file"`
	Limit            int      `mapstructure:"limit"`
	Width            int      `mapstructure:"width"`
	Color            string   `mapstructure:"color"`
	HistoryBackend   string   `mapstructure:"history-backend"`
	HistoryDBConnect string   `mapstructure:"history-db-connect"`
	LogLevel         string   `mapstructure:"log-level"`
	LogFormat        string   `mapstructure:"log-format"`
	QuotaThreshold   int      `mapstructure:"quota-threshold"`

	// --- Fields from summarize, render and pipeline flags ---
	RepoFile    string `mapstructure:"repo-file"`
	ContribFile string `mapstructure:"contrib-file"`
	SummaryFile string `mapstructure:"summary-file"`
	WebDir      string `mapstructure:"web-dir"`

	// --- Fields from sweepCmd.Flags() ---
	RetentionDays int `mapstructure:"retention-days"`

	// --- Per-collector flags, nested so both can own --max-repos ---
	Repos        ReposRawInput        `mapstructure:"repos"`
	Contributors ContributorsRawInput `mapstructure:"contributors"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Organizations != nil {
		clone.Organizations = make([]string, len(c.Organizations))
		copy(clone.Organizations, c.Organizations)
	}
	return &clone
}

// CloneWithDate creates a copy of the Config for another date token.
// Derived file paths are recomputed for the new date.
func (c *Config) CloneWithDate(dateToken string) (*Config, error) {
	ref, err := ParseDateToken(dateToken)
	if err != nil {
		return nil, err
	}
	clone := c.Clone()
	clone.Date = dateToken
	clone.Reference = ref
	clone.RepoFile = clone.SnapshotPath(schema.ReposFilePrefix)
	clone.ContribInputFile = clone.RepoFile
	clone.ContribFile = clone.SnapshotPath(schema.ContributionFilePrefix)
	clone.SummaryFile = clone.SnapshotPath(schema.SummaryFilePrefix)
	return clone, nil
}

// SnapshotPath returns the default location of a snapshot for the configured date.
func (c *Config) SnapshotPath(prefix string) string {
	return filepath.Join(c.OutputDir, schema.SnapshotFileName(prefix, c.Date))
}

// ConfigParams returns the run parameters recorded alongside history rows.
func (c *Config) ConfigParams() map[string]any {
	return map[string]any{
		"organizations":    c.Organizations,
		"output_dir":       c.OutputDir,
		"max_repos":        c.MaxRepos,
		"sample_repos":     c.SampleRepos,
		"max_contributors": c.MaxContributors,
		"retention_days":   c.RetentionDays,
	}
}

// ParseDateToken parses a YYYY-MM-DD token into midnight UTC.
func ParseDateToken(s string) (time.Time, error) {
	t, err := time.ParseInLocation(schema.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. The token and organizations are only
// required by commands that reach the hosting API.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, needsToken bool) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processDate(cfg, input); err != nil {
		return err
	}
	if err := processCollectors(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if needsToken {
		if err := processCredentials(cfg, input); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateBackendConfigs validates the history backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// validateSimpleInputs processes and validates the output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.WebDir = input.WebDir
	if cfg.WebDir == "" {
		cfg.WebDir = DefaultWebDir
	}
	cfg.OutputDir = input.OutputDir
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Limit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.Limit = input.Limit

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 3. Logging Validation ---
	levelStr := input.LogLevel
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", input.LogLevel, err)
	}
	cfg.LogLevel = level

	cfg.LogFormat = schema.LogFormat(strings.ToLower(input.LogFormat))
	if cfg.LogFormat == "" {
		cfg.LogFormat = schema.TextLog
	}
	if _, ok := schema.ValidLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}

	// --- 4. Retention Validation ---
	if input.RetentionDays < 0 {
		return fmt.Errorf("retention-days cannot be negative (received %d)", input.RetentionDays)
	}
	cfg.RetentionDays = input.RetentionDays

	return nil
}

// processDate resolves the date token and every derived snapshot path.
func processDate(cfg *Config, input *ConfigRawInput) error {
	token := strings.TrimSpace(input.Date)
	if token == "" {
		token = time.Now().UTC().Format(schema.DateLayout)
	}
	ref, err := ParseDateToken(token)
	if err != nil {
		return err
	}
	cfg.Date = token
	cfg.Reference = ref

	cfg.RepoFile = input.RepoFile
	if cfg.RepoFile == "" {
		cfg.RepoFile = cfg.SnapshotPath(schema.ReposFilePrefix)
	}
	cfg.ContribInputFile = input.Contributors.InputFile
	if cfg.ContribInputFile == "" {
		cfg.ContribInputFile = cfg.RepoFile
	}
	cfg.ContribFile = input.ContribFile
	if cfg.ContribFile == "" {
		cfg.ContribFile = cfg.SnapshotPath(schema.ContributionFilePrefix)
	}
	cfg.SummaryFile = input.SummaryFile
	cfg.SummaryFileSet = cfg.SummaryFile != ""
	if cfg.SummaryFile == "" {
		cfg.SummaryFile = cfg.SnapshotPath(schema.SummaryFilePrefix)
	}
	return nil
}

// processCollectors validates the caps used by both collectors.
func processCollectors(cfg *Config, input *ConfigRawInput) error {
	if input.Repos.MaxRepos <= 0 {
		return fmt.Errorf("repos max-repos must be greater than 0 (received %d)", input.Repos.MaxRepos)
	}
	cfg.MaxRepos = input.Repos.MaxRepos

	if input.Contributors.MaxRepos <= 0 {
		return fmt.Errorf("contributors max-repos must be greater than 0 (received %d)", input.Contributors.MaxRepos)
	}
	cfg.SampleRepos = input.Contributors.MaxRepos

	if input.Contributors.MaxContributors <= 0 {
		return fmt.Errorf("max-contributors must be greater than 0 (received %d)", input.Contributors.MaxContributors)
	}
	cfg.MaxContributors = input.Contributors.MaxContributors

	cfg.QuotaCheckEvery = input.Contributors.CheckEvery
	if cfg.QuotaCheckEvery <= 0 {
		cfg.QuotaCheckEvery = DefaultQuotaCheckEvery
	}
	cfg.QuotaThreshold = input.QuotaThreshold
	if cfg.QuotaThreshold < 0 {
		return fmt.Errorf("quota-threshold cannot be negative (received %d)", input.QuotaThreshold)
	}
	cfg.Progress = input.Contributors.Progress
	return nil
}

// processCredentials checks the token and the organizations to collect.
func processCredentials(cfg *Config, input *ConfigRawInput) error {
	cfg.Token = strings.TrimSpace(input.Token)
	if cfg.Token == "" {
		return ErrMissingToken
	}

	cfg.Organizations = ParseOrganizations(input.Organizations)
	if len(cfg.Organizations) == 0 {
		return fmt.Errorf("at least one organization is required")
	}
	return nil
}

// ParseOrganizations trims, splits and de-duplicates organization names
// while keeping their first-seen order.
func ParseOrganizations(raw []string) []string {
	seen := make(map[string]struct{})
	var orgs []string
	for _, entry := range raw {
		for part := range strings.SplitSeq(entry, ",") {
			org := strings.TrimSpace(part)
			if org == "" {
				continue
			}
			if _, ok := seen[org]; ok {
				continue
			}
			seen[org] = struct{}{}
			orgs = append(orgs, org)
		}
	}
	return orgs
}
