package core

import (
	"slices"
	"time"

	"github.com/huangsam/ghsnap/core/agg"
	"github.com/huangsam/ghsnap/core/algo"
	"github.com/huangsam/ghsnap/schema"
)

// Default caps of the summary report sections.
const (
	DefaultTopLanguages    = 15
	DefaultTopLicenses     = 10
	DefaultTopRepositories = 25
	DefaultTopContributors = 25
)

// SummaryOptions configures Summarize.
type SummaryOptions struct {
	GeneratedAt     time.Time
	CollectionDate  string // falls back to the first record's collection date
	TopLanguages    int
	TopLicenses     int
	TopRepositories int
	TopContributors int
}

// DefaultSummaryOptions returns the report caps used by the CLI.
func DefaultSummaryOptions(generatedAt time.Time, dateToken string) SummaryOptions {
	return SummaryOptions{
		GeneratedAt:     generatedAt,
		CollectionDate:  dateToken,
		TopLanguages:    DefaultTopLanguages,
		TopLicenses:     DefaultTopLicenses,
		TopRepositories: DefaultTopRepositories,
		TopContributors: DefaultTopContributors,
	}
}

// Summarize derives the aggregate report from a repository snapshot and an optional
// contribution snapshot. A nil or empty contribution list leaves the contributor section out.
// The result depends only on its inputs.
func Summarize(repos []schema.RepositoryRecord, contribs []schema.RepositoryContribution, opts SummaryOptions) schema.SummaryReport {
	rollups, orgs := agg.GroupByOrganization(repos)
	slices.Sort(orgs)

	collectionDate := opts.CollectionDate
	if collectionDate == "" && len(repos) > 0 {
		collectionDate = repos[0].CollectionDate
	}

	report := schema.SummaryReport{
		CollectionMetadata: schema.CollectionMetadata{
			GenerationTimestamp: opts.GeneratedAt,
			CollectionDate:      collectionDate,
			TotalRepositories:   len(repos),
			TotalOrganizations:  len(orgs),
			Organizations:       orgs,
		},
		RepositoryStatistics:  repositoryStatistics(repos),
		OrganizationBreakdown: rollups,
		ProgrammingLanguages:  languageAnalysis(repos, opts.TopLanguages),
		RepositoryRankings: schema.RepositoryRankings{
			TopStarred: rankedProjection(algo.RankByStars(repos, opts.TopRepositories)),
			TopForked:  rankedProjection(algo.RankByForks(repos, opts.TopRepositories)),
		},
		LicenseAnalysis:    licenseAnalysis(repos, opts.TopLicenses),
		RepositorySizes:    sizeStatistics(repos),
		ActivityIndicators: activityIndicators(repos),
	}
	if len(contribs) > 0 {
		report.ContributionAnalysis = contributionAnalysis(contribs, opts.TopContributors)
	}
	return report
}

func repositoryStatistics(repos []schema.RepositoryRecord) schema.RepositoryStatistics {
	stars := make([]int, 0, len(repos))
	forks := make([]int, 0, len(repos))
	var stats schema.RepositoryStatistics
	for _, repo := range repos {
		stars = append(stars, repo.Stars)
		forks = append(forks, repo.Forks)
		stats.TotalOpenIssues += repo.OpenIssues
		stats.TotalWatchers += repo.Watchers
	}
	stats.TotalStars = agg.Sum(stars)
	stats.TotalForks = agg.Sum(forks)
	stats.AverageStarsPerRepo = agg.Round2(agg.Mean(stars))
	stats.AverageForksPerRepo = agg.Round2(agg.Mean(forks))
	stats.MedianStars = agg.Round2(agg.Median(stars))
	stats.MedianForks = agg.Round2(agg.Median(forks))
	return stats
}

func languageAnalysis(repos []schema.RepositoryRecord, limit int) schema.LanguageAnalysis {
	all := agg.NewHistogram()
	known := agg.NewHistogram()
	for _, repo := range repos {
		lang := schema.KnownValue(repo.Language)
		all.Add(schema.StringOrUnknown(lang))
		if lang != nil {
			known.Add(*lang)
		}
	}
	withLanguage := 0
	for _, b := range known.Top(-1) {
		withLanguage += b.Count
	}
	return schema.LanguageAnalysis{
		TopLanguages:             all.Top(limit),
		TotalLanguages:           known.Len(),
		RepositoriesWithLanguage: withLanguage,
	}
}

func licenseAnalysis(repos []schema.RepositoryRecord, limit int) schema.LicenseAnalysis {
	hist := agg.NewHistogram()
	var analysis schema.LicenseAnalysis
	for _, repo := range repos {
		license := schema.KnownValue(repo.License)
		hist.Add(schema.StringOrUnknown(license))
		if license != nil {
			analysis.RepositoriesWithLicense++
		} else {
			analysis.RepositoriesWithoutLicense++
		}
	}
	analysis.LicenseDistribution = hist.Top(limit)
	return analysis
}

func rankedProjection(repos []schema.RepositoryRecord) []schema.RankedRepository {
	ranked := make([]schema.RankedRepository, 0, len(repos))
	for _, repo := range repos {
		ranked = append(ranked, schema.RankedRepository{
			FullName:     repo.FullName,
			Organization: repo.Organization,
			Stars:        repo.Stars,
			Forks:        repo.Forks,
			Language:     schema.NormalizeOptional(repo.Language),
		})
	}
	return ranked
}

func sizeStatistics(repos []schema.RepositoryRecord) schema.SizeStatistics {
	sizes := make([]int, 0, len(repos))
	var largest *schema.RepositoryRecord
	for i := range repos {
		sizes = append(sizes, repos[i].Size)
		// strictly greater keeps the first occurrence on ties
		if largest == nil || repos[i].Size > largest.Size {
			largest = &repos[i]
		}
	}
	stats := schema.SizeStatistics{
		TotalSizeKB:   agg.Sum(sizes),
		AverageSizeKB: agg.Round2(agg.Mean(sizes)),
		MedianSizeKB:  agg.Round2(agg.Median(sizes)),
	}
	if largest != nil {
		name := largest.FullName
		stats.LargestRepo = &name
	}
	return stats
}

func activityIndicators(repos []schema.RepositoryRecord) schema.ActivityIndicators {
	var ind schema.ActivityIndicators
	for _, repo := range repos {
		if repo.UpdatedAt != nil {
			ind.RecentlyUpdated++
		}
		if repo.HasIssues {
			ind.WithIssuesEnabled++
		}
		if repo.HasWiki {
			ind.WithWikiEnabled++
		}
		if repo.HasPages {
			ind.WithPagesEnabled++
		}
		if repo.Archived {
			ind.ArchivedRepositories++
		}
	}
	return ind
}

func contributionAnalysis(contribs []schema.RepositoryContribution, limit int) *schema.ContributionAnalysis {
	total := 0
	for _, c := range contribs {
		total += c.TotalContributors
	}
	return &schema.ContributionAnalysis{
		RepositoriesAnalyzed:       len(contribs),
		TotalContributors:          total,
		AverageContributorsPerRepo: agg.Round2(float64(total) / float64(len(contribs))),
		TopContributors:            algo.RankContributors(agg.MergeContributors(contribs), limit),
	}
}
