package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
)

// WriteQualityReport outputs a quality report, dispatching based on the output format configured.
func WriteQualityReport(report schema.QualityReport, cfg *contract.Config, duration time.Duration) error {
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
			return writeQualityCSV(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for quality reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeQualityTables(w, report, duration)
		}, "Wrote table")
	}
}

// qualityMetrics lists the scalar metrics of a report in display order,
// followed by one missing_<field> entry per field.
func qualityMetrics(report schema.QualityReport) [][]string {
	rows := [][]string{
		{"status", report.Status},
		{"total_records", strconv.Itoa(report.TotalRecords)},
		{"duplicates", strconv.Itoa(report.Duplicates)},
		{"earliest_created", formatOptionalTime(report.DateRange.EarliestCreated)},
		{"latest_updated", formatOptionalTime(report.DateRange.LatestUpdated)},
	}
	for _, field := range sortedKeys(report.MissingData) {
		rows = append(rows, []string{"missing_" + field, strconv.Itoa(report.MissingData[field])})
	}
	return rows
}

func writeQualityTables(w io.Writer, report schema.QualityReport, duration time.Duration) error {
	if report.Status != schema.QualityOK {
		_, err := fmt.Fprintf(w, "Quality check: %s (%s)\n", report.Status, report.Message)
		return err
	}
	if err := renderTable(w, []string{"Metric", "Value"}, qualityMetrics(report)); err != nil {
		return err
	}

	var fileRows [][]string
	for _, f := range report.OutputFiles {
		fileRows = append(fileRows, []string{f.Name, strconv.FormatInt(f.Size, 10), f.Modified.UTC().Format(time.RFC3339)})
	}
	if err := renderTable(w, []string{"File", "Bytes", "Modified"}, fileRows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Validation completed in %v\n", duration)
	return err
}

func writeQualityCSV(w io.Writer, report schema.QualityReport) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		for _, row := range qualityMetrics(report) {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.UTC().Format(time.RFC3339)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
