package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/ghsnap/core"
	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/internal/iocache"
	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/schema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// logger is the structured logger configured by sharedSetup.
var logger *logrus.Logger

// viperPrefixAnnotation names the config section that a command's local flags belong to.
const viperPrefixAnnotation = "viper-prefix"

// startProfiling starts CPU and memory profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	// Memory profiling will be captured at the end
	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "ghsnap",
	Short:              "Collect and summarize daily snapshots of GitHub organizations.",
	Long:               `ghsnap records what a set of GitHub organizations look like each day and turns the snapshots into reports and a dashboard.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configureConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("GHSNAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// The token is never a flag; GHSNAP_TOKEN wins over GITHUB_TOKEN
	if err := viper.BindEnv("token", "GHSNAP_TOKEN", "GITHUB_TOKEN"); err != nil {
		contract.LogFatal("Error binding token environment", err)
	}

	// Set defaults in Viper
	viper.SetDefault("organizations", contract.DefaultOrganizations)
	viper.SetDefault("output-dir", contract.DefaultOutputDir)
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("history-backend", schema.SQLiteBackend)
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("log-format", schema.TextLog)
	viper.SetDefault("quota-threshold", contract.DefaultQuotaThreshold)
	viper.SetDefault("web-dir", contract.DefaultWebDir)
	viper.SetDefault("retention-days", contract.DefaultRetentionDays)
	viper.SetDefault("repos.max-repos", contract.DefaultMaxRepos)
	viper.SetDefault("contributors.max-repos", contract.DefaultSampleRepos)
	viper.SetDefault("contributors.max-contributors", contract.DefaultMaxContributors)
	viper.SetDefault("contributors.check-every", contract.DefaultQuotaCheckEvery)
}

// configureConfigFile points viper at --config or the default .ghsnap.yaml locations.
func configureConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".ghsnap") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// readConfigFile loads the config file, tolerating its absence.
func readConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// bindCommandFlags binds the local flags of the running command to viper.
// Commands that share a flag name keep separate keys through their prefix,
// so "collect repos --max-repos" and "collect contributors --max-repos" do not collide.
func bindCommandFlags(cmd *cobra.Command) error {
	prefix := cmd.Annotations[viperPrefixAnnotation]
	var bindErr error
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		bindErr = viper.BindPFlag(prefix+f.Name, f)
	})
	return bindErr
}

// sharedSetup unmarshals config, runs validation and prepares the logger and history store.
// needsToken is set for commands that call the hosting API.
func sharedSetup(cmd *cobra.Command, needsToken bool) error {
	profilePrefix := viper.GetString("profile")
	if err := contract.ProcessProfilingConfig(profile, profilePrefix); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if profile.Enabled {
		if err := startProfiling(); err != nil {
			return fmt.Errorf("failed to start profiling: %w", err)
		}
	}

	if err := bindCommandFlags(cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := readConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input, needsToken); err != nil {
		return err
	}

	// 4. Logger for every stage
	logger = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	rootCtx = core.WithLogger(rootCtx, logger)

	// 5. Initialize history tracking with validated config
	if err := iocache.InitStores(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// sharedSetupWrapper is the PreRunE of commands that only touch local files.
func sharedSetupWrapper(cmd *cobra.Command, _ []string) error {
	return sharedSetup(cmd, false)
}

// apiSetupWrapper is the PreRunE of commands that reach the hosting API.
func apiSetupWrapper(cmd *cobra.Command, _ []string) error {
	return sharedSetup(cmd, true)
}

// Execute runs the root command with a context cancelled on interrupt.
func Execute(ctx context.Context) error {
	rootCtx = ctx
	return rootCmd.ExecuteContext(ctx)
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}
