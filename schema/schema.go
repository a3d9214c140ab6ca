// Package schema has records, reports and enums shared by all parts of ghsnap.
package schema

import "time"

// RepositoryRecord is an immutable snapshot of one repository at collection time.
// It is uniquely identified by (FullName, CollectionDate).
type RepositoryRecord struct {
	Organization string  `json:"organization"`
	Name         string  `json:"name"`
	FullName     string  `json:"full_name"`
	Description  *string `json:"description"`

	Stars      int `json:"stars"`
	Forks      int `json:"forks"`
	Watchers   int `json:"watchers"`
	OpenIssues int `json:"open_issues"`
	Size       int `json:"size"` // Kilobytes as reported by the hosting API

	Language *string  `json:"language"` // nil means unknown
	License  *string  `json:"license"`  // nil means unknown
	Topics   []string `json:"topics"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	PushedAt  *time.Time `json:"pushed_at"`

	CloneURL      string `json:"clone_url"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`

	Archived  bool `json:"archived"`
	Disabled  bool `json:"disabled"`
	Private   bool `json:"private"`
	HasWiki   bool `json:"has_wiki"`
	HasPages  bool `json:"has_pages"`
	HasIssues bool `json:"has_issues"`

	CollectionDate      string    `json:"collection_date"`
	CollectionTimestamp time.Time `json:"collection_timestamp"`
}

// ContributorRecord is one person's contribution count to one repository.
// Login is the merge key across repositories; it is case-sensitive and opaque.
type ContributorRecord struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
	Type          string `json:"type"`
	SiteAdmin     bool   `json:"site_admin"`
}

// RepositoryContribution groups the capped contributor list of one repository.
// TotalContributors is the true count and may exceed len(Contributors).
type RepositoryContribution struct {
	RepoFullName        string              `json:"repo_full_name"`
	Organization        string              `json:"organization"`
	RepoName            string              `json:"repo_name"`
	RepoStars           int                 `json:"repo_stars"`
	RepoForks           int                 `json:"repo_forks"`
	RepoLanguage        *string             `json:"repo_language"`
	Contributors        []ContributorRecord `json:"contributors"`
	TotalContributors   int                 `json:"total_contributors"`
	CollectionDate      string              `json:"collection_date"`
	CollectionTimestamp time.Time           `json:"collection_timestamp"`
}
