package core

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ProgressFunc is notified after each repository handled by the contributor collector.
type ProgressFunc func(done, total int, repo string)

// Context keys for stage options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	loggerKey         contextKey = "logger"
	progressKey       contextKey = "progress"
)

// withSuppressHeader sets whether headers should be suppressed in the context
func withSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithLogger attaches the structured logger used by every stage.
func WithLogger(ctx context.Context, logger *logrus.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// loggerFrom returns the logger from context, or the logrus standard logger.
func loggerFrom(ctx context.Context) *logrus.Logger {
	if logger, ok := ctx.Value(loggerKey).(*logrus.Logger); ok && logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}

// WithProgress installs a progress callback for the contributor collector.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey, fn)
}

// progressFrom returns the progress callback from context, if any.
func progressFrom(ctx context.Context) ProgressFunc {
	fn, _ := ctx.Value(progressKey).(ProgressFunc)
	return fn
}
