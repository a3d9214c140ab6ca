// Package ghclient implements the hosting client on top of the GitHub REST API.
package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// perPage is the largest page size the API accepts.
const perPage = 100

// Config holds client construction options.
type Config struct {
	Token    string
	BaseURL  string // Empty means the public API
	Throttle ThrottleConfig
}

// Client is a contract.HostingClient backed by go-github.
type Client struct {
	gh       *github.Client
	throttle *Throttle
	logger   *logrus.Logger
}

var _ contract.HostingClient = &Client{} // Compile-time check

// NewClient creates an authenticated client.
func NewClient(ctx context.Context, cfg Config, logger *logrus.Logger) (*Client, error) {
	var tc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(tc)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
		}
		gh.BaseURL = u
	}

	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		gh:       gh,
		throttle: NewThrottle(cfg.Throttle, logger),
		logger:   logger,
	}, nil
}

// ListOrgRepositories lists public repositories of an organization in API order.
func (c *Client) ListOrgRepositories(ctx context.Context, org string, maxRepos int) ([]schema.RepositoryRecord, schema.Quota, error) {
	opts := &github.RepositoryListByOrgOptions{
		Type: "public",
		ListOptions: github.ListOptions{
			PerPage: min(maxRepos, perPage),
		},
	}

	var records []schema.RepositoryRecord
	var quota schema.Quota
	for len(records) < maxRepos {
		var repos []*github.Repository
		var resp *github.Response
		err := c.throttle.DoWithRetry(ctx, "list repositories for "+org, func() error {
			var err error
			repos, resp, err = c.gh.Repositories.ListByOrg(ctx, org, opts)
			return err
		})
		if resp != nil {
			quota = quotaFromRate(resp.Rate)
		}
		if err != nil {
			return nil, quota, fmt.Errorf("failed to list repositories for %s: %w", org, err)
		}

		for _, repo := range repos {
			if len(records) == maxRepos {
				break
			}
			records = append(records, ConvertRepository(org, repo))
		}

		c.logger.WithFields(logrus.Fields{
			logging.FieldOrg:       org,
			"page":                 opts.Page,
			"fetched":              len(records),
			logging.FieldRemaining: quota.Remaining,
		}).Debug("Listed repository page")

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return records, quota, nil
}

// ListContributors returns up to maxContributors contributors and the true contributor count.
// The true count is derived from the last page so only two calls are needed per repository.
func (c *Client) ListContributors(ctx context.Context, fullName string, maxContributors int) ([]schema.ContributorRecord, int, schema.Quota, error) {
	owner, name, ok := schema.SplitFullName(fullName)
	if !ok {
		return nil, 0, schema.Quota{}, fmt.Errorf("invalid repository name %q", fullName)
	}

	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var records []schema.ContributorRecord
	var quota schema.Quota
	total, lastPage := 0, 0
	for {
		page, resp, err := c.contributorPage(ctx, owner, name, opts)
		if resp != nil {
			quota = quotaFromRate(resp.Rate)
		}
		if err != nil {
			return nil, 0, quota, fmt.Errorf("failed to list contributors for %s: %w", fullName, err)
		}
		if opts.Page <= 1 && resp != nil {
			lastPage = resp.LastPage
		}
		total += len(page)

		for _, contributor := range page {
			if len(records) == maxContributors {
				break
			}
			records = append(records, ConvertContributor(contributor))
		}

		if resp == nil || resp.NextPage == 0 {
			return records, total, quota, nil
		}
		if len(records) == maxContributors {
			break
		}
		opts.Page = resp.NextPage
	}

	// Count the remaining pages without walking them.
	if lastPage > 0 {
		opts.Page = lastPage
		page, resp, err := c.contributorPage(ctx, owner, name, opts)
		if resp != nil {
			quota = quotaFromRate(resp.Rate)
		}
		if err != nil {
			return nil, 0, quota, fmt.Errorf("failed to count contributors for %s: %w", fullName, err)
		}
		total = (lastPage-1)*perPage + len(page)
	}

	return records, total, quota, nil
}

func (c *Client) contributorPage(ctx context.Context, owner, name string, opts *github.ListContributorsOptions) ([]*github.Contributor, *github.Response, error) {
	var page []*github.Contributor
	var resp *github.Response
	err := c.throttle.DoWithRetry(ctx, "list contributors for "+owner+"/"+name, func() error {
		var err error
		page, resp, err = c.gh.Repositories.ListContributors(ctx, owner, name, opts)
		return err
	})
	return page, resp, err
}

// RateLimit returns the current core quota.
func (c *Client) RateLimit(ctx context.Context) (schema.Quota, error) {
	var limits *github.RateLimits
	err := c.throttle.DoWithRetry(ctx, "get rate limit", func() error {
		var err error
		limits, _, err = c.gh.RateLimits(ctx)
		return err
	})
	if err != nil {
		return schema.Quota{}, fmt.Errorf("failed to get rate limit: %w", err)
	}
	if limits == nil || limits.Core == nil {
		return schema.Quota{}, nil
	}
	return quotaFromRate(*limits.Core), nil
}

// Stats exposes the throttle counters.
func (c *Client) Stats() ThrottleStats {
	return c.throttle.Stats()
}

// ConvertRepository converts a GitHub repository to a snapshot record.
// The collection date and timestamp are left for the collector to stamp.
func ConvertRepository(org string, repo *github.Repository) schema.RepositoryRecord {
	var license *string
	if repo.License != nil {
		license = schema.NormalizeOptional(repo.License.Name)
	}
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return schema.RepositoryRecord{
		Organization:  org,
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Description:   schema.NormalizeOptional(repo.Description),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		Watchers:      repo.GetWatchersCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		Size:          repo.GetSize(),
		Language:      schema.NormalizeOptional(repo.Language),
		License:       license,
		Topics:        topics,
		CreatedAt:     timestampPtr(repo.CreatedAt),
		UpdatedAt:     timestampPtr(repo.UpdatedAt),
		PushedAt:      timestampPtr(repo.PushedAt),
		CloneURL:      repo.GetCloneURL(),
		HTMLURL:       repo.GetHTMLURL(),
		DefaultBranch: repo.GetDefaultBranch(),
		Archived:      repo.GetArchived(),
		Disabled:      repo.GetDisabled(),
		Private:       repo.GetPrivate(),
		HasWiki:       repo.GetHasWiki(),
		HasPages:      repo.GetHasPages(),
		HasIssues:     repo.GetHasIssues(),
	}
}

// ConvertContributor converts a GitHub contributor to our model.
func ConvertContributor(contributor *github.Contributor) schema.ContributorRecord {
	return schema.ContributorRecord{
		Login:         contributor.GetLogin(),
		Contributions: contributor.GetContributions(),
		AvatarURL:     contributor.GetAvatarURL(),
		HTMLURL:       contributor.GetHTMLURL(),
		Type:          contributor.GetType(),
		SiteAdmin:     contributor.GetSiteAdmin(),
	}
}

func timestampPtr(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.UTC()
	return &t
}

func quotaFromRate(rate github.Rate) schema.Quota {
	return schema.Quota{
		Limit:     rate.Limit,
		Remaining: rate.Remaining,
		Used:      max(rate.Limit-rate.Remaining, 0),
		ResetAt:   rate.Reset.UTC(),
	}
}
