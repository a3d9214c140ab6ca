// Package render turns a summary report into a static HTML dashboard.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"slices"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/dustin/go-humanize"
	"github.com/huangsam/ghsnap/schema"
)

// Dashboard section caps.
const (
	TopStarredLimit     = 15
	TopContributorLimit = 10
)

// PlotlyURL is the CDN location of the charting library.
const PlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

//go:embed templates/dashboard.html.tmpl
var templatesFS embed.FS

var dashboardTemplate = template.Must(
	template.New("dashboard.html.tmpl").Funcs(funcMap()).ParseFS(templatesFS, "templates/dashboard.html.tmpl"),
)

// funcMap merges the sprig helpers with the number formatting used by the dashboard.
func funcMap() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["comma"] = func(n int) string { return humanize.Comma(int64(n)) }
	return funcs
}

type repoRow struct {
	FullName     string
	Organization string
	Stars        int
	Forks        int
	Language     string
}

// dashboardView is everything the template reads.
type dashboardView struct {
	PlotlyURL          string
	GeneratedAt        time.Time
	CollectionDate     string
	TotalRepositories  int
	TotalStars         int
	TotalForks         int
	TotalOrganizations int
	TopStarred         []repoRow
	LanguageLabels     []string
	LanguageCounts     []int
	OrgNames           []string
	OrgStars           []int
	Contributors       []schema.ContributorSummary
}

// Dashboard renders the report as a self-contained HTML page. The page is a pure
// projection of the report; the contributor table is left out when the report
// has no contribution analysis.
func Dashboard(report schema.SummaryReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, newDashboardView(report)); err != nil {
		return nil, fmt.Errorf("failed to execute dashboard template: %w", err)
	}
	return buf.Bytes(), nil
}

func newDashboardView(report schema.SummaryReport) dashboardView {
	view := dashboardView{
		PlotlyURL:          PlotlyURL,
		GeneratedAt:        report.CollectionMetadata.GenerationTimestamp,
		CollectionDate:     report.CollectionMetadata.CollectionDate,
		TotalRepositories:  report.CollectionMetadata.TotalRepositories,
		TotalStars:         report.RepositoryStatistics.TotalStars,
		TotalForks:         report.RepositoryStatistics.TotalForks,
		TotalOrganizations: report.CollectionMetadata.TotalOrganizations,
		LanguageLabels:     []string{},
		LanguageCounts:     []int{},
		OrgNames:           []string{},
		OrgStars:           []int{},
	}

	starred := report.RepositoryRankings.TopStarred
	for _, repo := range starred[:min(len(starred), TopStarredLimit)] {
		row := repoRow{
			FullName:     repo.FullName,
			Organization: repo.Organization,
			Stars:        repo.Stars,
			Forks:        repo.Forks,
		}
		if repo.Language != nil {
			row.Language = *repo.Language
		}
		view.TopStarred = append(view.TopStarred, row)
	}

	for _, bucket := range report.ProgrammingLanguages.TopLanguages {
		view.LanguageLabels = append(view.LanguageLabels, bucket.Name)
		view.LanguageCounts = append(view.LanguageCounts, bucket.Count)
	}

	for org := range report.OrganizationBreakdown {
		view.OrgNames = append(view.OrgNames, org)
	}
	slices.Sort(view.OrgNames)
	for _, org := range view.OrgNames {
		view.OrgStars = append(view.OrgStars, report.OrganizationBreakdown[org].Stars.Sum)
	}

	if ca := report.ContributionAnalysis; ca != nil {
		top := ca.TopContributors
		view.Contributors = top[:min(len(top), TopContributorLimit)]
	}
	return view
}
