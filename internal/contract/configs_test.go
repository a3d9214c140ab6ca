package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/ghsnap/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation with every default applied.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Token:         "ghp_test",
		Organizations: []string{"acme", "globex"},
		OutputDir:     "data",
		Date:          "2024-01-10",
		Output:        "text",
		Limit:         10,
		Color:         "yes",
		LogLevel:      "info",
		LogFormat:     "text",
		RetentionDays: DefaultRetentionDays,
		Repos:         ReposRawInput{MaxRepos: DefaultMaxRepos},
		Contributors: ContributorsRawInput{
			MaxRepos:        DefaultSampleRepos,
			MaxContributors: DefaultMaxContributors,
		},
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		needsToken  bool
		expectError bool
	}{
		{
			name:       "valid minimal config",
			mutate:     func(*ConfigRawInput) {},
			needsToken: true,
		},
		{
			name:        "missing token for api command",
			mutate:      func(in *ConfigRawInput) { in.Token = "" },
			needsToken:  true,
			expectError: true,
		},
		{
			name:       "missing token for offline command",
			mutate:     func(in *ConfigRawInput) { in.Token = "" },
			needsToken: false,
		},
		{
			name:        "no organizations",
			mutate:      func(in *ConfigRawInput) { in.Organizations = []string{" , "} },
			needsToken:  true,
			expectError: true,
		},
		{
			name:        "invalid date",
			mutate:      func(in *ConfigRawInput) { in.Date = "2024/01/10" },
			expectError: true,
		},
		{
			name:        "invalid limit (zero)",
			mutate:      func(in *ConfigRawInput) { in.Limit = 0 },
			expectError: true,
		},
		{
			name:        "invalid limit (too large)",
			mutate:      func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 },
			expectError: true,
		},
		{
			name:        "invalid output format",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "parquet output without file",
			mutate:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: true,
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: true,
		},
		{
			name:        "invalid log level",
			mutate:      func(in *ConfigRawInput) { in.LogLevel = "chatty" },
			expectError: true,
		},
		{
			name:        "invalid log format",
			mutate:      func(in *ConfigRawInput) { in.LogFormat = "xml" },
			expectError: true,
		},
		{
			name:        "invalid repos max-repos",
			mutate:      func(in *ConfigRawInput) { in.Repos.MaxRepos = 0 },
			expectError: true,
		},
		{
			name:        "invalid contributors max-repos",
			mutate:      func(in *ConfigRawInput) { in.Contributors.MaxRepos = -1 },
			expectError: true,
		},
		{
			name:        "invalid max-contributors",
			mutate:      func(in *ConfigRawInput) { in.Contributors.MaxContributors = 0 },
			expectError: true,
		},
		{
			name:        "negative retention",
			mutate:      func(in *ConfigRawInput) { in.RetentionDays = -1 },
			expectError: true,
		},
		{
			name:        "invalid history backend",
			mutate:      func(in *ConfigRawInput) { in.HistoryBackend = "oracle" },
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			mutate:      func(in *ConfigRawInput) { in.HistoryBackend = string(schema.MySQLBackend) },
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			mutate: func(in *ConfigRawInput) {
				in.HistoryBackend = string(schema.MySQLBackend)
				in.HistoryDBConnect = "user:pass@tcp(localhost:3306)/ghsnap"
			},
		},
		{
			name:   "none backend",
			mutate: func(in *ConfigRawInput) { in.HistoryBackend = string(schema.NoneBackend) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input, tt.needsToken)

			if tt.expectError {
				assert.Error(t, err, "contract.ProcessAndValidate should return an error for %s", tt.name)
			} else {
				assert.NoError(t, err, "contract.ProcessAndValidate should not return an error for %s", tt.name)
				assert.Equal(t, input.Limit, cfg.Limit)
				assert.Equal(t, input.Date, cfg.Date)
			}
		})
	}
}

func TestProcessAndValidateSentinels(t *testing.T) {
	input := validInput()
	input.Token = "  "
	err := ProcessAndValidate(&Config{}, input, true)
	assert.ErrorIs(t, err, ErrMissingToken)

	input = validInput()
	input.Date = "10-01-2024"
	err = ProcessAndValidate(&Config{}, input, false)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestProcessAndValidateDerivedPaths(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput(), true))

	assert.Equal(t, filepath.Join("data", "repos_raw_2024-01-10.json"), cfg.RepoFile)
	assert.Equal(t, cfg.RepoFile, cfg.ContribInputFile)
	assert.Equal(t, filepath.Join("data", "contributions_2024-01-10.json"), cfg.ContribFile)
	assert.Equal(t, filepath.Join("data", "github_summary_2024-01-10.json"), cfg.SummaryFile)
	assert.False(t, cfg.SummaryFileSet)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), cfg.Reference)
	assert.Equal(t, []string{"acme", "globex"}, cfg.Organizations)
	assert.Equal(t, schema.SQLiteBackend, cfg.HistoryBackend)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, DefaultQuotaCheckEvery, cfg.QuotaCheckEvery)
	assert.Equal(t, DefaultWebDir, cfg.WebDir)
}

func TestProcessAndValidateOverrides(t *testing.T) {
	input := validInput()
	input.RepoFile = "custom/repos.json"
	input.Contributors.InputFile = "other/repos.json"
	input.SummaryFile = "out/summary.json"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input, false))
	assert.Equal(t, "custom/repos.json", cfg.RepoFile)
	assert.Equal(t, "other/repos.json", cfg.ContribInputFile)
	assert.Equal(t, "out/summary.json", cfg.SummaryFile)
	assert.True(t, cfg.SummaryFileSet)
}

func TestProcessAndValidateDefaultDate(t *testing.T) {
	input := validInput()
	input.Date = ""

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input, false))
	assert.Equal(t, time.Now().UTC().Format(schema.DateLayout), cfg.Date)
}

func TestCloneWithDate(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput(), true))

	clone, err := cfg.CloneWithDate("2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", clone.Date)
	assert.Equal(t, filepath.Join("data", "repos_raw_2024-02-01.json"), clone.RepoFile)
	assert.Equal(t, "2024-01-10", cfg.Date, "original config must be untouched")

	clone.Organizations[0] = "changed"
	assert.Equal(t, "acme", cfg.Organizations[0])

	_, err = cfg.CloneWithDate("bad")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseOrganizations(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil", nil, nil},
		{"single comma list", []string{"a, b ,c"}, []string{"a", "b", "c"}},
		{"duplicates keep first", []string{"a", "b", "a"}, []string{"a", "b"}},
		{"blank entries", []string{"", " , ", "x"}, []string{"x"}},
		{"case sensitive", []string{"Acme", "acme"}, []string{"Acme", "acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseOrganizations(tt.input))
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite ignores string", schema.SQLiteBackend, "", false},
		{"none ignores string", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "u:p@tcp(localhost:3306)/db", false},
		{"mysql missing tcp", schema.MySQLBackend, "u:p@localhost/db", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=db", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "ghsnap"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "ghsnap", profile.Prefix)
}
