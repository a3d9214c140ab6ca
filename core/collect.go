package core

import (
	"context"
	"time"

	"github.com/huangsam/ghsnap/core/algo"
	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/schema"
	"github.com/sirupsen/logrus"
)

// RepoCollectOptions configures CollectRepositories.
type RepoCollectOptions struct {
	Organizations []string
	MaxRepos      int
	DateToken     string
	Now           func() time.Time
	Backpressure  *Backpressure
}

// ContribCollectOptions configures CollectContributions.
type ContribCollectOptions struct {
	SampleRepos     int
	MaxContributors int
	CheckEvery      int
	DateToken       string
	Now             func() time.Time
	Backpressure    *Backpressure
}

// CollectRepositories fetches up to MaxRepos public repositories for each organization.
// Records keep the order the API returned them in. An organization that fails is logged,
// contributes nothing and is reported as a Skip.
func CollectRepositories(ctx context.Context, client contract.HostingClient, opts RepoCollectOptions) ([]schema.RepositoryRecord, []schema.Skip, error) {
	logger := loggerFrom(ctx)
	now := nowFunc(opts.Now)
	records := []schema.RepositoryRecord{}
	var skips []schema.Skip

	for _, org := range opts.Organizations {
		if err := ctx.Err(); err != nil {
			return records, skips, err
		}
		entry := logger.WithField(logging.FieldOrg, org)
		entry.Info("Collecting repositories")

		repos, quota, err := client.ListOrgRepositories(ctx, org, opts.MaxRepos)
		if err != nil {
			if ctx.Err() != nil {
				return records, skips, ctx.Err()
			}
			entry.WithError(err).Error("Failed to collect repositories")
			skips = append(skips, schema.Skip{Entity: org, Kind: schema.OrganizationSkip, Reason: err.Error()})
		} else {
			if len(repos) > opts.MaxRepos {
				repos = repos[:opts.MaxRepos]
			}
			stamp := now().UTC()
			for i := range repos {
				repos[i].CollectionDate = opts.DateToken
				repos[i].CollectionTimestamp = stamp
			}
			records = append(records, repos...)
			entry.WithField("count", len(repos)).Info("Collected repositories")
		}

		if _, err := opts.Backpressure.Wait(ctx, quota); err != nil {
			return records, skips, err
		}
	}
	return records, skips, nil
}

// CollectContributions samples the most-starred repositories and fetches their
// contributors. A repository that fails is logged, omitted and reported as a Skip.
func CollectContributions(ctx context.Context, client contract.HostingClient, repos []schema.RepositoryRecord, opts ContribCollectOptions) ([]schema.RepositoryContribution, []schema.Skip, error) {
	logger := loggerFrom(ctx)
	progress := progressFrom(ctx)
	now := nowFunc(opts.Now)
	checkEvery := opts.CheckEvery
	if checkEvery <= 0 {
		checkEvery = contract.DefaultQuotaCheckEvery
	}

	sample := algo.SampleByStars(repos, opts.SampleRepos)
	contributions := []schema.RepositoryContribution{}
	var skips []schema.Skip
	var latest schema.Quota

	for i, repo := range sample {
		if err := ctx.Err(); err != nil {
			return contributions, skips, err
		}
		entry := logger.WithField(logging.FieldRepo, repo.FullName)
		entry.Debug("Collecting contributors")

		contributors, total, quota, err := client.ListContributors(ctx, repo.FullName, opts.MaxContributors)
		if quota.Known() {
			latest = quota
		}
		if err != nil {
			if ctx.Err() != nil {
				return contributions, skips, ctx.Err()
			}
			entry.WithError(err).Error("Failed to collect contributors")
			skips = append(skips, schema.Skip{Entity: repo.FullName, Kind: schema.RepositorySkip, Reason: err.Error()})
		} else {
			contributions = append(contributions, newContribution(repo, contributors, total, opts, now))
		}

		if progress != nil {
			progress(i+1, len(sample), repo.FullName)
		}

		if (i+1)%checkEvery == 0 {
			if !latest.Known() {
				latest, err = client.RateLimit(ctx)
				if err != nil {
					logger.WithError(err).Warn("Failed to read rate limit")
					continue
				}
			}
			logger.WithFields(logrus.Fields{
				logging.FieldRemaining: latest.Remaining,
				"limit":                latest.Limit,
				"processed":            i + 1,
			}).Info("Rate limit status")
			slept, err := opts.Backpressure.Wait(ctx, latest)
			if err != nil {
				return contributions, skips, err
			}
			if slept {
				// Re-read at the next checkpoint unless a call reports a fresh quota
				latest = schema.Quota{}
			}
		}
	}
	return contributions, skips, nil
}

// newContribution builds the per-repository record, capping the contributor list.
func newContribution(repo schema.RepositoryRecord, contributors []schema.ContributorRecord, total int, opts ContribCollectOptions, now func() time.Time) schema.RepositoryContribution {
	if opts.MaxContributors > 0 && len(contributors) > opts.MaxContributors {
		contributors = contributors[:opts.MaxContributors]
	}
	if contributors == nil {
		contributors = []schema.ContributorRecord{}
	}
	return schema.RepositoryContribution{
		RepoFullName:        repo.FullName,
		Organization:        repo.Organization,
		RepoName:            repo.Name,
		RepoStars:           repo.Stars,
		RepoForks:           repo.Forks,
		RepoLanguage:        repo.Language,
		Contributors:        contributors,
		TotalContributors:   max(total, len(contributors)),
		CollectionDate:      opts.DateToken,
		CollectionTimestamp: now().UTC(),
	}
}

func nowFunc(fn func() time.Time) func() time.Time {
	if fn != nil {
		return fn
	}
	return time.Now
}
