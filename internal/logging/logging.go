// Package logging configures the structured logger shared by every stage.
package logging

import (
	"io"
	"time"

	"github.com/huangsam/ghsnap/schema"
	"github.com/sirupsen/logrus"
)

// Standard field names used across components.
const (
	FieldOrg       = "org"
	FieldRepo      = "repo"
	FieldStage     = "stage"
	FieldFile      = "file"
	FieldRemaining = "remaining"
	FieldResetAt   = "reset_at"
)

// New creates a logger writing to out with the given level and format.
// Known token shapes are redacted before any entry is written.
func New(out io.Writer, level logrus.Level, format schema.LogFormat) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.AddHook(NewRedactionHook())

	if format == schema.JSONLog {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  "15:04:05",
			PadLevelText:     true,
			QuoteEmptyFields: true,
		})
	}
	return logger
}

// Discard returns a logger that drops everything, for tests and quiet paths.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
