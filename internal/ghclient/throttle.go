package ghclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrRetriesExhausted is returned when all retry attempts fail due to secondary rate limiting.
var ErrRetriesExhausted = errors.New("rate-limit retries exhausted")

// ThrottleConfig configures the client-side limiter and retry behavior.
type ThrottleConfig struct {
	RequestsPerSecond float64       // Token refill rate (default: 1.0)
	BurstSize         int           // Max tokens available at once (default: 3)
	MaxRetries        int           // Max retry attempts on secondary rate limits (default: 5)
	InitialBackoff    time.Duration // First retry delay (default: 2s)
	MaxBackoff        time.Duration // Ceiling for exponential backoff (default: 60s)
	BackoffMultiplier float64       // Backoff growth factor (default: 2.0)
}

// DefaultThrottleConfig returns conservative defaults for the GitHub API.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		RequestsPerSecond: 1.0,
		BurstSize:         3,
		MaxRetries:        5,
		InitialBackoff:    2 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ThrottleStats holds counters for throttle activity.
type ThrottleStats struct {
	TotalCalls   int64
	TotalRetries int64
}

// Throttle paces API calls and retries secondary rate-limit responses.
type Throttle struct {
	limiter *rate.Limiter
	config  ThrottleConfig
	logger  *logrus.Logger

	totalCalls   atomic.Int64
	totalRetries atomic.Int64
}

// NewThrottle creates a new Throttle with the given configuration.
func NewThrottle(cfg ThrottleConfig, logger *logrus.Logger) *Throttle {
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		config:  cfg,
		logger:  logger,
	}
}

// DoWithRetry executes fn with rate limiting and exponential backoff on secondary rate limits.
// Other errors, including an exhausted primary quota, are returned immediately.
func (t *Throttle) DoWithRetry(ctx context.Context, operation string, fn func() error) error {
	backoff := t.config.InitialBackoff

	for attempt := 0; attempt <= t.config.MaxRetries; attempt++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("throttle wait for %s: %w", operation, err)
		}
		t.totalCalls.Add(1)

		err := fn()
		if err == nil {
			return nil
		}

		retryAfter, retryable := secondaryRateLimit(err)
		if !retryable {
			return err
		}
		if attempt == t.config.MaxRetries {
			return fmt.Errorf("%s after %d retries (%w): %w", operation, t.config.MaxRetries, ErrRetriesExhausted, err)
		}
		t.totalRetries.Add(1)

		wait := max(backoff, retryAfter)
		if t.logger != nil {
			t.logger.WithFields(logrus.Fields{
				"operation": operation,
				"attempt":   attempt + 1,
				"backoff":   wait.String(),
			}).Warn("Secondary rate limit hit, backing off")
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = min(time.Duration(float64(backoff)*t.config.BackoffMultiplier), t.config.MaxBackoff)
	}

	return fmt.Errorf("%s: %w", operation, ErrRetriesExhausted)
}

// Stats returns a snapshot of throttle activity counters.
func (t *Throttle) Stats() ThrottleStats {
	return ThrottleStats{
		TotalCalls:   t.totalCalls.Load(),
		TotalRetries: t.totalRetries.Load(),
	}
}

// secondaryRateLimit reports whether err is a retryable abuse or secondary limit,
// along with the server-suggested wait when there is one.
func secondaryRateLimit(err error) (time.Duration, bool) {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return abuseErr.GetRetryAfter(), true
	}
	var primaryErr *github.RateLimitError
	if errors.As(err, &primaryErr) {
		return 0, false
	}

	errStr := strings.ToLower(err.Error())
	return 0, strings.Contains(errStr, "secondary rate") ||
		strings.Contains(errStr, "abuse") ||
		strings.Contains(errStr, "too many requests")
}
