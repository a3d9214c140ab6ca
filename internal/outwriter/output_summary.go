package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/internal/parquet"
	"github.com/huangsam/ghsnap/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSummaryReport outputs a summary report, dispatching based on the output format configured.
func WriteSummaryReport(report schema.SummaryReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteRankingsParquet(parquet.ConvertRankings(report.RepositoryRankings), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		return nil
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTables(w, report, cfg, duration)
		}, "Wrote table")
	}
}

// writeSummaryTables generates and writes the human-readable tables.
func writeSummaryTables(w io.Writer, report schema.SummaryReport, cfg *contract.Config, duration time.Duration) error {
	meta := report.CollectionMetadata
	stats := report.RepositoryStatistics

	overview := [][]string{
		{"Repositories", strconv.Itoa(meta.TotalRepositories)},
		{"Organizations", strconv.Itoa(meta.TotalOrganizations)},
		{"Total Stars", strconv.Itoa(stats.TotalStars)},
		{"Total Forks", strconv.Itoa(stats.TotalForks)},
		{"Open Issues", strconv.Itoa(stats.TotalOpenIssues)},
		{"Avg Stars / Repo", fmtFloat(stats.AverageStarsPerRepo)},
		{"Median Stars", fmtFloat(stats.MedianStars)},
		{"Languages", strconv.Itoa(report.ProgrammingLanguages.TotalLanguages)},
		{"Largest Repo", optional(report.RepositorySizes.LargestRepo)},
	}
	if err := renderTable(w, []string{"Metric", "Value"}, overview); err != nil {
		return err
	}

	nameWidth := GetMaxTableNameWidth(cfg)
	starred := report.RepositoryRankings.TopStarred
	starred = starred[:min(len(starred), cfg.Limit)]
	var rankRows [][]string
	for i, r := range starred {
		rankRows = append(rankRows, []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(r.FullName, nameWidth),
			r.Organization,
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			optional(r.Language),
		})
	}
	if err := renderTable(w, []string{"Rank", "Repository", "Organization", "Stars", "Forks", "Language"}, rankRows); err != nil {
		return err
	}

	var langRows [][]string
	for _, b := range report.ProgrammingLanguages.TopLanguages {
		langRows = append(langRows, []string{b.Name, strconv.Itoa(b.Count)})
	}
	if err := renderTable(w, []string{"Language", "Repositories"}, langRows); err != nil {
		return err
	}

	if ca := report.ContributionAnalysis; ca != nil {
		top := ca.TopContributors[:min(len(ca.TopContributors), cfg.Limit)]
		var contribRows [][]string
		for i, c := range top {
			contribRows = append(contribRows, []string{
				strconv.Itoa(i + 1),
				contract.TruncateName(c.Login, nameWidth),
				strconv.Itoa(c.TotalContributions),
				strconv.Itoa(c.ReposContributed),
			})
		}
		if err := renderTable(w, []string{"Rank", "Contributor", "Contributions", "Repos"}, contribRows); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Contributors: %d across %d repositories (avg %s per repo)\n",
			ca.TotalContributors, ca.RepositoriesAnalyzed, fmtFloat(ca.AverageContributorsPerRepo)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Showing top %d of %d repositories for %s\n", len(starred), meta.TotalRepositories, meta.CollectionDate); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Summary completed in %v. History backend: %s\n", duration, cfg.HistoryBackend); err != nil {
		return err
	}
	return nil
}

// renderTable writes one right-aligned table.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// writeSummaryCSV writes both rankings, one row per ranked repository.
func writeSummaryCSV(w io.Writer, report schema.SummaryReport) error {
	header := []string{"ranking", "rank", "full_name", "organization", "stars", "forks", "language"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range parquet.ConvertRankings(report.RepositoryRankings) {
			rec := []string{
				row.Ranking,
				strconv.Itoa(int(row.Rank)),
				row.FullName,
				row.Organization,
				strconv.Itoa(int(row.Stars)),
				strconv.Itoa(int(row.Forks)),
				optional(row.Language),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
