// Package agg has single-pass accumulators for repository snapshot data.
package agg

import (
	"math"
	"slices"

	"github.com/huangsam/ghsnap/schema"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Sum adds up values.
func Sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean of values, or 0 when there are none.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	return float64(Sum(values)) / float64(len(values))
}

// Median returns the median of values, or 0 when there are none.
// The input is not modified.
func Median(values []int) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

// Histogram counts string keys while remembering first-seen order.
type Histogram struct {
	counts map[string]int
	order  []string
}

// NewHistogram creates an empty Histogram.
func NewHistogram() *Histogram {
	return &Histogram{counts: make(map[string]int)}
}

// Add counts one occurrence of key.
func (h *Histogram) Add(key string) {
	if _, ok := h.counts[key]; !ok {
		h.order = append(h.order, key)
	}
	h.counts[key]++
}

// Len returns the number of distinct keys.
func (h *Histogram) Len() int {
	return len(h.order)
}

// Top returns at most limit buckets by count descending, ties by first occurrence.
func (h *Histogram) Top(limit int) []schema.Bucket {
	buckets := make([]schema.Bucket, 0, len(h.order))
	for _, key := range h.order {
		buckets = append(buckets, schema.Bucket{Name: key, Count: h.counts[key]})
	}
	slices.SortStableFunc(buckets, func(a, b schema.Bucket) int {
		return b.Count - a.Count
	})
	if limit >= 0 && len(buckets) > limit {
		buckets = buckets[:limit]
	}
	return buckets
}

// orgAccumulator collects per-organization values in one pass.
type orgAccumulator struct {
	stars      []int
	forks      []int
	openIssues int
	sizeKB     int
}

// GroupByOrganization partitions repositories by organization and rolls up each group.
// The second return value lists organizations in first-seen order.
func GroupByOrganization(repos []schema.RepositoryRecord) (map[string]schema.OrgRollup, []string) {
	accs := make(map[string]*orgAccumulator)
	order := []string{}
	for _, repo := range repos {
		acc, ok := accs[repo.Organization]
		if !ok {
			acc = &orgAccumulator{}
			accs[repo.Organization] = acc
			order = append(order, repo.Organization)
		}
		acc.stars = append(acc.stars, repo.Stars)
		acc.forks = append(acc.forks, repo.Forks)
		acc.openIssues += repo.OpenIssues
		acc.sizeKB += repo.Size
	}

	rollups := make(map[string]schema.OrgRollup, len(accs))
	for org, acc := range accs {
		rollups[org] = schema.OrgRollup{
			Repositories: len(acc.stars),
			Stars:        rollupMetric(acc.stars),
			Forks:        rollupMetric(acc.forks),
			OpenIssues:   acc.openIssues,
			SizeKB:       acc.sizeKB,
		}
	}
	return rollups, order
}

// rollupMetric is only called for non-empty groups.
func rollupMetric(values []int) schema.MetricRollup {
	return schema.MetricRollup{
		Sum:  Sum(values),
		Mean: Round2(Mean(values)),
		Max:  slices.Max(values),
	}
}

// contributorAccumulator collects one login's totals across repositories.
type contributorAccumulator struct {
	summary schema.ContributorSummary
	repos   map[string]struct{}
}

// MergeContributors sums contributions per login across repositories and counts
// the distinct repositories each login contributed to. Output is in first-seen order.
func MergeContributors(contribs []schema.RepositoryContribution) []schema.ContributorSummary {
	accs := make(map[string]*contributorAccumulator)
	var order []string
	for _, repo := range contribs {
		for _, c := range repo.Contributors {
			acc, ok := accs[c.Login]
			if !ok {
				acc = &contributorAccumulator{
					summary: schema.ContributorSummary{
						Login:     c.Login,
						AvatarURL: c.AvatarURL,
						HTMLURL:   c.HTMLURL,
					},
					repos: make(map[string]struct{}),
				}
				accs[c.Login] = acc
				order = append(order, c.Login)
			}
			acc.summary.TotalContributions += c.Contributions
			acc.repos[repo.RepoFullName] = struct{}{}
		}
	}

	merged := make([]schema.ContributorSummary, 0, len(order))
	for _, login := range order {
		acc := accs[login]
		acc.summary.ReposContributed = len(acc.repos)
		merged = append(merged, acc.summary)
	}
	return merged
}
