package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/huangsam/ghsnap/schema"
)

// ValidateQuality reports completeness and duplication of a repository snapshot
// and lists the files in outputDir.
func ValidateQuality(repos []schema.RepositoryRecord, outputDir string) (schema.QualityReport, error) {
	files, err := listOutputFiles(outputDir)
	if err != nil {
		return schema.QualityReport{}, err
	}
	if len(repos) == 0 {
		return schema.QualityReport{
			Status:      schema.QualityError,
			Message:     "No data provided",
			MissingData: map[string]int{},
			OutputFiles: files,
		}, nil
	}

	report := schema.QualityReport{
		Status:       schema.QualityOK,
		TotalRecords: len(repos),
		MissingData:  make(map[string]int),
		OutputFiles:  files,
	}
	seen := make(map[string]struct{}, len(repos))
	for _, repo := range repos {
		if _, dup := seen[repo.FullName]; dup {
			report.Duplicates++
		}
		seen[repo.FullName] = struct{}{}

		countMissing(report.MissingData, repo)

		if repo.CreatedAt != nil && (report.DateRange.EarliestCreated == nil || repo.CreatedAt.Before(*report.DateRange.EarliestCreated)) {
			created := *repo.CreatedAt
			report.DateRange.EarliestCreated = &created
		}
		if repo.UpdatedAt != nil && (report.DateRange.LatestUpdated == nil || repo.UpdatedAt.After(*report.DateRange.LatestUpdated)) {
			updated := *repo.UpdatedAt
			report.DateRange.LatestUpdated = &updated
		}
	}
	return report, nil
}

// countMissing increments the per-field count of null or empty values.
func countMissing(missing map[string]int, repo schema.RepositoryRecord) {
	fields := map[string]bool{
		"description":    schema.NormalizeOptional(repo.Description) == nil,
		"language":       schema.KnownValue(repo.Language) == nil,
		"license":        schema.KnownValue(repo.License) == nil,
		"topics":         len(repo.Topics) == 0,
		"created_at":     repo.CreatedAt == nil,
		"updated_at":     repo.UpdatedAt == nil,
		"pushed_at":      repo.PushedAt == nil,
		"clone_url":      repo.CloneURL == "",
		"html_url":       repo.HTMLURL == "",
		"default_branch": repo.DefaultBranch == "",
	}
	for field, isMissing := range fields {
		if _, ok := missing[field]; !ok {
			missing[field] = 0
		}
		if isMissing {
			missing[field]++
		}
	}
}

// listOutputFiles returns the regular files of dir in name order.
// A missing directory yields an empty list.
func listOutputFiles(dir string) ([]schema.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []schema.FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	files := make([]schema.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, schema.FileInfo{
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	return files, nil
}
