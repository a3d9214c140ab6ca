// Package snapshot reads and writes the JSON files exchanged between stages.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/huangsam/ghsnap/schema"
)

// Snapshot read errors.
var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// WriteJSON writes v to path atomically as 2-space indented UTF-8 JSON.
// A temp file in the same directory is synced, closed and renamed into place.
func WriteJSON(path string, v any) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpFile := file.Name()

	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(tmpFile)
		}
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err = encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON to %s: %w", tmpFile, err)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file %s: %w", tmpFile, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpFile, err)
	}
	if err = os.Chmod(tmpFile, 0o644); err != nil {
		return fmt.Errorf("failed to chmod file %s: %w", tmpFile, err)
	}
	if err = os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}

// WriteFile writes raw bytes to path with the same atomic guarantees as WriteJSON.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpFile := file.Name()

	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(tmpFile)
		}
	}()

	if _, err = file.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file %s: %w", tmpFile, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpFile, err)
	}
	if err = os.Chmod(tmpFile, 0o644); err != nil {
		return fmt.Errorf("failed to chmod file %s: %w", tmpFile, err)
	}
	if err = os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}

// ReadRepositories loads a repository snapshot.
func ReadRepositories(path string) ([]schema.RepositoryRecord, error) {
	return readJSON[[]schema.RepositoryRecord](path)
}

// ReadContributions loads a contribution snapshot.
func ReadContributions(path string) ([]schema.RepositoryContribution, error) {
	return readJSON[[]schema.RepositoryContribution](path)
}

// ReadSummary loads a summary report.
func ReadSummary(path string) (schema.SummaryReport, error) {
	return readJSON[schema.SummaryReport](path)
}

// Exists reports whether a regular file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// LatestSummary returns the summary file in dir with the newest modification time.
func LatestSummary(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, schema.SummaryFilePrefix+"_*.json"))
	if err != nil {
		return "", fmt.Errorf("failed to list summaries in %s: %w", dir, err)
	}

	var newest string
	var newestInfo fs.FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if newestInfo == nil || info.ModTime().After(newestInfo.ModTime()) {
			newest, newestInfo = match, info
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: no %s_*.json in %s", ErrSnapshotNotFound, schema.SummaryFilePrefix, dir)
	}
	return newest, nil
}

func readJSON[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return out, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrMalformedSnapshot, path, err)
	}
	return out, nil
}
