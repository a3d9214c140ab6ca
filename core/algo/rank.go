// Package algo has ranking helpers used by the summary aggregator.
package algo

import (
	"cmp"
	"slices"

	"github.com/huangsam/ghsnap/schema"
)

// TopK stable-sorts a copy of items with cmpFn and returns the first k.
// Equal elements keep their input order, so results are repeatable for the same input.
func TopK[T any](items []T, k int, cmpFn func(a, b T) int) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, cmpFn)
	if k >= 0 && len(sorted) > k {
		sorted = sorted[:k]
	}
	if sorted == nil {
		sorted = []T{}
	}
	return sorted
}

// byStars orders repositories by stars then forks, both descending.
func byStars(a, b schema.RepositoryRecord) int {
	if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
		return c
	}
	return cmp.Compare(b.Forks, a.Forks)
}

// byForks orders repositories by forks then stars, both descending.
func byForks(a, b schema.RepositoryRecord) int {
	if c := cmp.Compare(b.Forks, a.Forks); c != 0 {
		return c
	}
	return cmp.Compare(b.Stars, a.Stars)
}

// RankByStars returns the top 'limit' repositories by stars, then forks, then input order.
func RankByStars(repos []schema.RepositoryRecord, limit int) []schema.RepositoryRecord {
	return TopK(repos, limit, byStars)
}

// RankByForks returns the top 'limit' repositories by forks, then stars, then input order.
func RankByForks(repos []schema.RepositoryRecord, limit int) []schema.RepositoryRecord {
	return TopK(repos, limit, byForks)
}

// SampleByStars returns the top 'limit' repositories by stars alone, ties by input order.
// This is how the contributor collector picks which repositories to sample.
func SampleByStars(repos []schema.RepositoryRecord, limit int) []schema.RepositoryRecord {
	return TopK(repos, limit, func(a, b schema.RepositoryRecord) int {
		return cmp.Compare(b.Stars, a.Stars)
	})
}

// RankContributors returns the top 'limit' contributors by total contributions, ties by input order.
func RankContributors(contributors []schema.ContributorSummary, limit int) []schema.ContributorSummary {
	return TopK(contributors, limit, func(a, b schema.ContributorSummary) int {
		return cmp.Compare(b.TotalContributions, a.TotalContributions)
	})
}
