package core

import (
	"context"
	"time"

	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/schema"
	"github.com/sirupsen/logrus"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backpressure pauses a collector when the API quota runs low.
type Backpressure struct {
	Threshold int
	Buffer    time.Duration
	Sleep     Sleeper
	Now       func() time.Time
	Logger    *logrus.Logger
}

// NewBackpressure returns a Backpressure that really sleeps.
func NewBackpressure(threshold int, buffer time.Duration, logger *logrus.Logger) *Backpressure {
	return &Backpressure{
		Threshold: threshold,
		Buffer:    buffer,
		Sleep:     SleepContext,
		Now:       time.Now,
		Logger:    logger,
	}
}

// Wait sleeps until the quota resets, plus the buffer, when fewer than
// Threshold calls remain. It reports whether it slept.
func (b *Backpressure) Wait(ctx context.Context, quota schema.Quota) (bool, error) {
	if b == nil || !quota.Known() || quota.Remaining >= b.Threshold {
		return false, nil
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	wait := max(quota.ResetAt.Sub(now())+b.Buffer, 0)

	if b.Logger != nil {
		b.Logger.WithFields(logrus.Fields{
			logging.FieldRemaining: quota.Remaining,
			logging.FieldResetAt:   quota.ResetAt.UTC().Format(time.RFC3339),
			"wait":                 wait.Round(time.Second).String(),
		}).Warn("Rate limit low, waiting for reset")
	}

	sleep := b.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	if err := sleep(ctx, wait); err != nil {
		return true, err
	}
	return true, nil
}
