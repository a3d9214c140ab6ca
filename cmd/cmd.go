// Package cmd defines the command-line interface for ghsnap.
package cmd

import (
	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the collect subcommands to the parent collect command
	collectCmd.AddCommand(collectReposCmd)
	collectCmd.AddCommand(collectContributorsCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringSlice("organizations", contract.DefaultOrganizations, "Comma-separated list of organizations to monitor")
	rootCmd.PersistentFlags().String("output-dir", contract.DefaultOutputDir, "Directory holding the snapshot files")
	rootCmd.PersistentFlags().String("date", "", "Snapshot date as YYYY-MM-DD (default today in UTC)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("quota-threshold", contract.DefaultQuotaThreshold, "Pause collectors when fewer API calls than this remain")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", string(schema.TextLog), "Log format: text or json")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Local flags are bound to Viper by sharedSetup for the running command only
	collectReposCmd.Flags().Int("max-repos", contract.DefaultMaxRepos, "Maximum repositories per organization")

	collectContributorsCmd.Flags().String("input-file", "", "Repository snapshot to sample (default: repos_raw_<date>.json)")
	collectContributorsCmd.Flags().Int("max-repos", contract.DefaultSampleRepos, "Number of most-starred repositories to sample")
	collectContributorsCmd.Flags().Int("max-contributors", contract.DefaultMaxContributors, "Maximum contributors kept per repository")
	collectContributorsCmd.Flags().Int("check-every", contract.DefaultQuotaCheckEvery, "Check the API quota every N repositories")
	collectContributorsCmd.Flags().Bool("progress", false, "Show a progress bar on stderr")

	summarizeCmd.Flags().String("repo-file", "", "Repository snapshot (default: repos_raw_<date>.json)")
	summarizeCmd.Flags().String("contrib-file", "", "Contribution snapshot, optional (default: contributions_<date>.json)")
	summarizeCmd.Flags().String("summary-file", "", "Where to write the summary (default: github_summary_<date>.json)")

	renderCmd.Flags().String("summary-file", "", "Summary to render (default: newest github_summary_*.json)")
	renderCmd.Flags().String("web-dir", contract.DefaultWebDir, "Directory for the dashboard")

	validateCmd.Flags().String("repo-file", "", "Repository snapshot (default: repos_raw_<date>.json)")

	sweepCmd.Flags().Int("retention-days", contract.DefaultRetentionDays, "Delete snapshots older than this many days")

	pipelineCmd.Flags().String("web-dir", contract.DefaultWebDir, "Directory for the dashboard")
	pipelineCmd.Flags().Int("retention-days", contract.DefaultRetentionDays, "Delete snapshots older than this many days")

	exportCmd.Flags().String("contrib-file", "", "Contribution snapshot, optional (default: contributions_<date>.json)")

	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
}
