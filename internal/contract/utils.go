package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/ghsnap/schema"
)

// Color variables for console output.
var (
	ExhaustedColor = color.New(color.FgRed, color.Bold) // ExhaustedColor represents standard danger.
	LowColor       = color.New(color.FgYellow)          // LowColor represents standard caution, not bold.
	HealthyColor   = color.New(color.FgGreen)           // HealthyColor represents a comfortable margin.
)

// GetPlainLabel returns a plain text label describing the remaining quota.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(quota schema.Quota, threshold int) string {
	return string(quota.Health(threshold))
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(quota schema.Quota, threshold int) string {
	text := GetPlainLabel(quota, threshold)

	switch schema.QuotaHealth(text) {
	case schema.QuotaExhausted:
		return ExhaustedColor.Sprint(text)
	case schema.QuotaLow:
		return LowColor.Sprint(text)
	default:
		return HealthyColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ghsnap_history.db"
	}
	return filepath.Join(homeDir, ".ghsnap_history.db")
}

// TruncateName truncates a name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave space for the "..." and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
