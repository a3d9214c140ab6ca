package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/ghsnap/internal/ghclient"
	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return WithLogger(context.Background(), logging.Discard())
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 8, 15, 0, 0, time.FixedZone("PST", -8*3600))
}

func TestCollectRepositories(t *testing.T) {
	now := fixedNow()
	healthy := schema.Quota{Limit: 5000, Remaining: 4900, ResetAt: now.Add(time.Hour)}
	low := schema.Quota{Limit: 5000, Remaining: 10, ResetAt: now.Add(time.Minute)}

	client := &ghclient.MockHostingClient{}
	client.On("ListOrgRepositories", mock.Anything, "acme", 2).Return([]schema.RepositoryRecord{
		{Organization: "acme", Name: "rocket", FullName: "acme/rocket", Stars: 3},
		{Organization: "acme", Name: "anvil", FullName: "acme/anvil", Stars: 1},
		{Organization: "acme", Name: "magnet", FullName: "acme/magnet", Stars: 2},
	}, low, nil)
	client.On("ListOrgRepositories", mock.Anything, "globex", 2).Return(nil, healthy, errors.New("404 Not Found"))
	client.On("ListOrgRepositories", mock.Anything, "initech", 2).Return([]schema.RepositoryRecord{
		{Organization: "initech", Name: "tps", FullName: "initech/tps"},
	}, healthy, nil)

	sleeper := &recordingSleeper{}
	records, skips, err := CollectRepositories(testContext(), client, RepoCollectOptions{
		Organizations: []string{"acme", "globex", "initech"},
		MaxRepos:      2,
		DateToken:     "2024-03-01",
		Now:           func() time.Time { return now },
		Backpressure:  newTestBackpressure(100, now, sleeper),
	})
	require.NoError(t, err)
	client.AssertExpectations(t)

	require.Len(t, records, 3)
	assert.Equal(t, "acme/rocket", records[0].FullName, "API order is kept")
	assert.Equal(t, "acme/anvil", records[1].FullName)
	assert.Equal(t, "initech/tps", records[2].FullName)
	for _, r := range records {
		assert.Equal(t, "2024-03-01", r.CollectionDate)
		assert.Equal(t, now.UTC(), r.CollectionTimestamp)
	}

	require.Len(t, skips, 1)
	assert.Equal(t, schema.Skip{Entity: "globex", Kind: schema.OrganizationSkip, Reason: "404 Not Found"}, skips[0])
	assert.Equal(t, []time.Duration{2 * time.Minute}, sleeper.waits, "low quota after acme should pause once")
}

func TestCollectRepositoriesAllFail(t *testing.T) {
	client := &ghclient.MockHostingClient{}
	client.On("ListOrgRepositories", mock.Anything, mock.Anything, 5).Return(nil, schema.Quota{}, errors.New("boom"))

	records, skips, err := CollectRepositories(testContext(), client, RepoCollectOptions{
		Organizations: []string{"a", "b"},
		MaxRepos:      5,
		DateToken:     "2024-03-01",
	})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Len(t, skips, 2)
}

func TestCollectRepositoriesCancelled(t *testing.T) {
	client := &ghclient.MockHostingClient{}
	ctx, cancel := context.WithCancel(testContext())
	cancel()

	records, _, err := CollectRepositories(ctx, client, RepoCollectOptions{
		Organizations: []string{"acme"},
		MaxRepos:      5,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records)
	client.AssertNotCalled(t, "ListOrgRepositories", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollectContributions(t *testing.T) {
	now := fixedNow()
	healthy := schema.Quota{Limit: 5000, Remaining: 4000, ResetAt: now.Add(time.Hour)}
	lang := "Go"
	repos := []schema.RepositoryRecord{
		{Organization: "acme", Name: "a", FullName: "acme/a", Stars: 10},
		{Organization: "acme", Name: "b", FullName: "acme/b", Stars: 30, Forks: 4, Language: &lang},
		{Organization: "acme", Name: "c", FullName: "acme/c", Stars: 20},
	}

	client := &ghclient.MockHostingClient{}
	client.On("ListContributors", mock.Anything, "acme/b", 2).Return([]schema.ContributorRecord{
		{Login: "alice", Contributions: 9},
		{Login: "bob", Contributions: 5},
		{Login: "carol", Contributions: 1},
	}, 50, healthy, nil)
	client.On("ListContributors", mock.Anything, "acme/c", 2).Return(nil, 0, healthy, errors.New("403 Forbidden"))

	type call struct {
		done, total int
		repo        string
	}
	var calls []call
	ctx := WithProgress(testContext(), func(done, total int, repo string) {
		calls = append(calls, call{done, total, repo})
	})

	contribs, skips, err := CollectContributions(ctx, client, repos, ContribCollectOptions{
		SampleRepos:     2,
		MaxContributors: 2,
		CheckEvery:      10,
		DateToken:       "2024-03-01",
		Now:             func() time.Time { return now },
	})
	require.NoError(t, err)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "ListContributors", mock.Anything, "acme/a", mock.Anything)

	require.Len(t, contribs, 1)
	got := contribs[0]
	assert.Equal(t, "acme/b", got.RepoFullName)
	assert.Equal(t, "acme", got.Organization)
	assert.Equal(t, "b", got.RepoName)
	assert.Equal(t, 30, got.RepoStars)
	assert.Equal(t, 4, got.RepoForks)
	assert.Equal(t, &lang, got.RepoLanguage)
	assert.Len(t, got.Contributors, 2, "list is capped")
	assert.Equal(t, 50, got.TotalContributors, "true count is kept")
	assert.Equal(t, now.UTC(), got.CollectionTimestamp)

	require.Len(t, skips, 1)
	assert.Equal(t, schema.RepositorySkip, skips[0].Kind)
	assert.Equal(t, "acme/c", skips[0].Entity)

	assert.Equal(t, []call{{1, 2, "acme/b"}, {2, 2, "acme/c"}}, calls)
}

func TestCollectContributionsTotalNeverBelowListed(t *testing.T) {
	client := &ghclient.MockHostingClient{}
	client.On("ListContributors", mock.Anything, "acme/a", 5).Return([]schema.ContributorRecord{
		{Login: "alice", Contributions: 1},
		{Login: "bob", Contributions: 1},
	}, 0, schema.Quota{}, nil)

	contribs, _, err := CollectContributions(testContext(), client,
		[]schema.RepositoryRecord{{FullName: "acme/a"}},
		ContribCollectOptions{SampleRepos: 1, MaxContributors: 5, CheckEvery: 10})
	require.NoError(t, err)
	require.Len(t, contribs, 1)
	assert.Equal(t, 2, contribs[0].TotalContributors)
}

func TestCollectContributionsChecksQuota(t *testing.T) {
	now := fixedNow()
	low := schema.Quota{Limit: 5000, Remaining: 5, ResetAt: now.Add(time.Minute)}
	healthy := schema.Quota{Limit: 5000, Remaining: 4900, ResetAt: now.Add(time.Hour)}
	repos := []schema.RepositoryRecord{
		{FullName: "acme/a", Stars: 2},
		{FullName: "acme/b", Stars: 1},
	}

	client := &ghclient.MockHostingClient{}
	client.On("ListContributors", mock.Anything, mock.Anything, 3).Return([]schema.ContributorRecord{}, 0, schema.Quota{}, nil)
	client.On("RateLimit", mock.Anything).Return(low, nil).Once()
	client.On("RateLimit", mock.Anything).Return(healthy, nil).Once()

	sleeper := &recordingSleeper{}
	contribs, skips, err := CollectContributions(testContext(), client, repos, ContribCollectOptions{
		SampleRepos:     2,
		MaxContributors: 3,
		CheckEvery:      1,
		Backpressure:    newTestBackpressure(100, now, sleeper),
	})
	require.NoError(t, err)
	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "RateLimit", 2)
	assert.Len(t, contribs, 2)
	assert.Empty(t, skips)
	assert.Len(t, sleeper.waits, 1, "the quota is re-read after a pause")
	assert.NotNil(t, contribs[0].Contributors)
}

func TestCollectContributionsPausesAgainWhenStillLow(t *testing.T) {
	now := fixedNow()
	low := schema.Quota{Limit: 5000, Remaining: 5, ResetAt: now.Add(time.Minute)}

	client := &ghclient.MockHostingClient{}
	client.On("ListContributors", mock.Anything, mock.Anything, 3).Return([]schema.ContributorRecord{}, 0, schema.Quota{}, nil)
	client.On("RateLimit", mock.Anything).Return(low, nil).Twice()

	sleeper := &recordingSleeper{}
	_, _, err := CollectContributions(testContext(), client,
		[]schema.RepositoryRecord{{FullName: "acme/a", Stars: 2}, {FullName: "acme/b", Stars: 1}},
		ContribCollectOptions{SampleRepos: 2, MaxContributors: 3, CheckEvery: 1, Backpressure: newTestBackpressure(100, now, sleeper)})
	require.NoError(t, err)
	client.AssertExpectations(t)
	assert.Len(t, sleeper.waits, 2, "a quota that is still low after the reset pauses again")
}

func TestCollectContributionsStopsOnCancelledWait(t *testing.T) {
	now := fixedNow()
	low := schema.Quota{Limit: 5000, Remaining: 0, ResetAt: now.Add(time.Minute)}

	client := &ghclient.MockHostingClient{}
	client.On("ListContributors", mock.Anything, "acme/a", 3).Return([]schema.ContributorRecord{}, 0, low, nil)

	sleeper := &recordingSleeper{err: context.Canceled}
	contribs, _, err := CollectContributions(testContext(), client,
		[]schema.RepositoryRecord{{FullName: "acme/a", Stars: 2}, {FullName: "acme/b", Stars: 1}},
		ContribCollectOptions{SampleRepos: 2, MaxContributors: 3, CheckEvery: 1, Backpressure: newTestBackpressure(100, now, sleeper)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, contribs, 1)
	client.AssertNotCalled(t, "ListContributors", mock.Anything, "acme/b", mock.Anything)
}
