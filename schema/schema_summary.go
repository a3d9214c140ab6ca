package schema

import "time"

// SummaryReport is derived from the two snapshots and recomputed fully on every run.
// ContributionAnalysis is nil when no contributor data was supplied.
type SummaryReport struct {
	CollectionMetadata    CollectionMetadata     `json:"collection_metadata" yaml:"collection_metadata"`
	RepositoryStatistics  RepositoryStatistics   `json:"repository_statistics" yaml:"repository_statistics"`
	OrganizationBreakdown map[string]OrgRollup   `json:"organization_breakdown" yaml:"organization_breakdown"`
	ProgrammingLanguages  LanguageAnalysis       `json:"programming_languages" yaml:"programming_languages"`
	RepositoryRankings    RepositoryRankings     `json:"repository_rankings" yaml:"repository_rankings"`
	LicenseAnalysis       LicenseAnalysis        `json:"license_analysis" yaml:"license_analysis"`
	RepositorySizes       SizeStatistics         `json:"repository_sizes" yaml:"repository_sizes"`
	ActivityIndicators    ActivityIndicators     `json:"activity_indicators" yaml:"activity_indicators"`
	ContributionAnalysis  *ContributionAnalysis  `json:"contribution_analysis,omitempty" yaml:"contribution_analysis,omitempty"`
}

// CollectionMetadata describes the inputs of a report.
type CollectionMetadata struct {
	GenerationTimestamp time.Time `json:"generation_timestamp" yaml:"generation_timestamp"`
	CollectionDate      string    `json:"collection_date" yaml:"collection_date"`
	TotalRepositories   int       `json:"total_repositories" yaml:"total_repositories"`
	TotalOrganizations  int       `json:"total_organizations" yaml:"total_organizations"`
	Organizations       []string  `json:"organizations" yaml:"organizations"`
}

// RepositoryStatistics holds global scalar statistics.
type RepositoryStatistics struct {
	TotalStars          int     `json:"total_stars" yaml:"total_stars"`
	TotalForks          int     `json:"total_forks" yaml:"total_forks"`
	TotalOpenIssues     int     `json:"total_open_issues" yaml:"total_open_issues"`
	TotalWatchers       int     `json:"total_watchers" yaml:"total_watchers"`
	AverageStarsPerRepo float64 `json:"average_stars_per_repo" yaml:"average_stars_per_repo"`
	AverageForksPerRepo float64 `json:"average_forks_per_repo" yaml:"average_forks_per_repo"`
	MedianStars         float64 `json:"median_stars" yaml:"median_stars"`
	MedianForks         float64 `json:"median_forks" yaml:"median_forks"`
}

// MetricRollup is the sum, mean and max of one metric within a group.
type MetricRollup struct {
	Sum  int     `json:"sum" yaml:"sum"`
	Mean float64 `json:"mean" yaml:"mean"`
	Max  int     `json:"max" yaml:"max"`
}

// OrgRollup aggregates the repositories of one organization.
type OrgRollup struct {
	Repositories int          `json:"repositories" yaml:"repositories"`
	Stars        MetricRollup `json:"stars" yaml:"stars"`
	Forks        MetricRollup `json:"forks" yaml:"forks"`
	OpenIssues   int          `json:"open_issues" yaml:"open_issues"`
	SizeKB       int          `json:"size_kb" yaml:"size_kb"`
}

// Bucket is one entry of a frequency histogram.
type Bucket struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// LanguageAnalysis is the language histogram section.
type LanguageAnalysis struct {
	TopLanguages             []Bucket `json:"top_languages" yaml:"top_languages"`
	TotalLanguages           int      `json:"total_languages" yaml:"total_languages"`
	RepositoriesWithLanguage int      `json:"repositories_with_language" yaml:"repositories_with_language"`
}

// LicenseAnalysis is the license histogram section.
type LicenseAnalysis struct {
	LicenseDistribution        []Bucket `json:"license_distribution" yaml:"license_distribution"`
	RepositoriesWithLicense    int      `json:"repositories_with_license" yaml:"repositories_with_license"`
	RepositoriesWithoutLicense int      `json:"repositories_without_license" yaml:"repositories_without_license"`
}

// RankedRepository is the projection of a repository used in rankings.
type RankedRepository struct {
	FullName     string  `json:"full_name" yaml:"full_name"`
	Organization string  `json:"organization" yaml:"organization"`
	Stars        int     `json:"stars" yaml:"stars"`
	Forks        int     `json:"forks" yaml:"forks"`
	Language     *string `json:"language" yaml:"language"`
}

// RepositoryRankings holds the two top-K lists.
type RepositoryRankings struct {
	TopStarred []RankedRepository `json:"top_starred_repositories" yaml:"top_starred_repositories"`
	TopForked  []RankedRepository `json:"top_forked_repositories" yaml:"top_forked_repositories"`
}

// SizeStatistics holds repository size statistics in kilobytes.
type SizeStatistics struct {
	TotalSizeKB   int     `json:"total_size_kb" yaml:"total_size_kb"`
	AverageSizeKB float64 `json:"average_size_kb" yaml:"average_size_kb"`
	MedianSizeKB  float64 `json:"median_size_kb" yaml:"median_size_kb"`
	LargestRepo   *string `json:"largest_repo" yaml:"largest_repo"`
}

// ActivityIndicators counts repositories by feature flags.
type ActivityIndicators struct {
	RecentlyUpdated      int `json:"recently_updated" yaml:"recently_updated"`
	WithIssuesEnabled    int `json:"with_issues_enabled" yaml:"with_issues_enabled"`
	WithWikiEnabled      int `json:"with_wiki_enabled" yaml:"with_wiki_enabled"`
	WithPagesEnabled     int `json:"with_pages_enabled" yaml:"with_pages_enabled"`
	ArchivedRepositories int `json:"archived_repositories" yaml:"archived_repositories"`
}

// ContributorSummary is one row of the global contributor leaderboard.
type ContributorSummary struct {
	Login              string `json:"login" yaml:"login"`
	TotalContributions int    `json:"total_contributions" yaml:"total_contributions"`
	ReposContributed   int    `json:"repos_contributed" yaml:"repos_contributed"`
	AvatarURL          string `json:"avatar_url" yaml:"avatar_url"`
	HTMLURL            string `json:"html_url" yaml:"html_url"`
}

// ContributionAnalysis is the contributor section of a report.
type ContributionAnalysis struct {
	RepositoriesAnalyzed       int                  `json:"repositories_analyzed" yaml:"repositories_analyzed"`
	TotalContributors          int                  `json:"total_contributors" yaml:"total_contributors"`
	AverageContributorsPerRepo float64              `json:"average_contributors_per_repo" yaml:"average_contributors_per_repo"`
	TopContributors            []ContributorSummary `json:"top_contributors" yaml:"top_contributors"`
}
