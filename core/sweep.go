package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/internal/snapshot"
	"github.com/huangsam/ghsnap/schema"
)

// removeFile deletes one snapshot file.
var removeFile = os.Remove

// Sweep deletes snapshot files in dir whose date token is more than horizonDays
// before reference. Files without a parseable date token and entries that are
// not regular files are left alone.
// A file that cannot be deleted is reported as a Skip and the sweep continues.
func Sweep(ctx context.Context, dir string, reference time.Time, horizonDays int) ([]string, []schema.Skip, error) {
	logger := loggerFrom(ctx)
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	ref := truncateDay(reference)
	deleted := []string{}
	var skips []schema.Skip
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return deleted, skips, err
		}
		token, ok := snapshot.DateFromName(path)
		if !ok {
			continue
		}
		if ageInDays(ref, token) <= horizonDays {
			continue
		}
		info, err := os.Lstat(path)
		if err != nil {
			logger.WithField(logging.FieldFile, path).WithError(err).Error("Failed to stat snapshot")
			skips = append(skips, schema.Skip{Entity: path, Kind: schema.FileSkip, Reason: err.Error()})
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if err := removeFile(path); err != nil {
			logger.WithField(logging.FieldFile, path).WithError(err).Error("Failed to delete snapshot")
			skips = append(skips, schema.Skip{Entity: path, Kind: schema.FileSkip, Reason: err.Error()})
			continue
		}
		logger.WithField(logging.FieldFile, path).Info("Deleted snapshot")
		deleted = append(deleted, path)
	}
	return deleted, skips, nil
}

// ageInDays is the whole number of days from token to reference.
func ageInDays(reference, token time.Time) int {
	return int(reference.Sub(token).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
