// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"os"
	"time"

	"github.com/huangsam/ghsnap/internal/contract"
	"github.com/huangsam/ghsnap/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct {
	status io.Writer // stage reports, never mixed with stdout data
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{status: os.Stderr}
}

// WriteSummary prints a summary report using the configured output format.
func (ow *OutWriter) WriteSummary(report schema.SummaryReport, cfg *contract.Config, duration time.Duration) error {
	return WriteSummaryReport(report, cfg, duration)
}

// WriteQuality prints a quality report using the configured output format.
func (ow *OutWriter) WriteQuality(report schema.QualityReport, cfg *contract.Config, duration time.Duration) error {
	return WriteQualityReport(report, cfg, duration)
}

// WriteStageResult reports the outcome of a stage on the status stream.
func (ow *OutWriter) WriteStageResult(result schema.StageResult, cfg *contract.Config, duration time.Duration) error {
	return writeStageResult(ow.status, result, cfg, duration)
}
