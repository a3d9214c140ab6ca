package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/ghsnap/core"
	"github.com/huangsam/ghsnap/internal/ghclient"
	"github.com/huangsam/ghsnap/internal/iocache"
	"github.com/spf13/cobra"
	progress "gopkg.in/cheggaaa/pb.v1"
)

// newHostingClient builds the GitHub client from the validated config.
func newHostingClient() (*ghclient.Client, error) {
	client, err := ghclient.NewClient(rootCtx, ghclient.Config{
		Token:    cfg.Token,
		Throttle: ghclient.DefaultThrottleConfig(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}

// progressBar renders contributor collection progress on stderr.
// The bar is created on the first callback, once the sample size is known.
func progressBar() (core.ProgressFunc, func()) {
	var bar *progress.ProgressBar
	update := func(done, total int, repo string) {
		if bar == nil {
			bar = progress.New(total)
			bar.Output = os.Stderr
			bar.ShowSpeed = false
			bar.SetMaxWidth(80).Start()
		}
		bar.Set(done).Postfix(" " + repo)
	}
	finish := func() {
		if bar != nil {
			bar.Finish()
		}
	}
	return update, finish
}

// collectCmd groups the two collectors.
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect repository or contributor snapshots from the GitHub API",
	Long: `Fetch the current state of the configured organizations and write it as a dated snapshot.

Subcommands:
  repos        - Repository metadata for every organization
  contributors - Contributor lists for the most-starred repositories

Both require a token in GITHUB_TOKEN or GHSNAP_TOKEN.`,
}

// collectReposCmd writes repos_raw_<date>.json.
var collectReposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Collect public repositories of each organization",
	Long: `List the public repositories of every configured organization and write them to
repos_raw_<date>.json in the output directory.

An organization that cannot be listed is skipped and reported; the others are still written.
Collection pauses when the API quota falls below --quota-threshold.

Examples:
  # Collect two organizations
  ghsnap collect repos --organizations kubernetes,golang

  # Collect at most 10 repositories each for a fixed date
  ghsnap collect repos --max-repos 10 --date 2024-03-01`,
	Annotations: map[string]string{viperPrefixAnnotation: "repos."},
	PreRunE:     apiSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		client, err := newHostingClient()
		if err != nil {
			return err
		}
		return core.ExecuteCollectRepos(rootCtx, cfg, client, iocache.Manager)
	},
}

// collectContributorsCmd writes contributions_<date>.json.
var collectContributorsCmd = &cobra.Command{
	Use:   "contributors",
	Short: "Collect contributors of the most-starred repositories",
	Long: `Read the repository snapshot, pick the --max-repos most-starred repositories and
write their contributors to contributions_<date>.json.

Each repository keeps at most --max-contributors contributors, along with the true total.
A repository that fails is skipped and reported.

Examples:
  # Sample 30 repositories with a progress bar
  ghsnap collect contributors --progress

  # Read a specific repository snapshot
  ghsnap collect contributors --input-file data/repos_raw_2024-03-01.json`,
	Annotations: map[string]string{viperPrefixAnnotation: "contributors."},
	PreRunE:     apiSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		client, err := newHostingClient()
		if err != nil {
			return err
		}
		ctx := rootCtx
		if cfg.Progress {
			update, finish := progressBar()
			defer finish()
			ctx = core.WithProgress(ctx, update)
		}
		return core.ExecuteCollectContributors(ctx, cfg, client, iocache.Manager)
	},
}
