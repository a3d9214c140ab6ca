package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/huangsam/ghsnap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSleeper captures requested waits instead of blocking.
type recordingSleeper struct {
	waits []time.Duration
	err   error
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

func newTestBackpressure(threshold int, now time.Time, sleeper *recordingSleeper) *Backpressure {
	return &Backpressure{
		Threshold: threshold,
		Buffer:    time.Minute,
		Sleep:     sleeper.sleep,
		Now:       func() time.Time { return now },
		Logger:    logging.Discard(),
	}
}

func TestBackpressureWait(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		quota     schema.Quota
		wantSlept bool
		wantWait  time.Duration
	}{
		{
			name:  "unknown quota",
			quota: schema.Quota{},
		},
		{
			name:  "above threshold",
			quota: schema.Quota{Limit: 5000, Remaining: 4000, ResetAt: now.Add(time.Hour)},
		},
		{
			name:  "equal to threshold",
			quota: schema.Quota{Limit: 5000, Remaining: 100, ResetAt: now.Add(time.Hour)},
		},
		{
			name:      "below threshold waits for reset plus buffer",
			quota:     schema.Quota{Limit: 5000, Remaining: 99, ResetAt: now.Add(10 * time.Minute)},
			wantSlept: true,
			wantWait:  11 * time.Minute,
		},
		{
			name:      "reset in the past waits for the buffer only",
			quota:     schema.Quota{Limit: 5000, Remaining: 0, ResetAt: now.Add(-30 * time.Second)},
			wantSlept: true,
			wantWait:  30 * time.Second,
		},
		{
			name:      "reset long past never waits negative",
			quota:     schema.Quota{Limit: 5000, Remaining: 0, ResetAt: now.Add(-time.Hour)},
			wantSlept: true,
			wantWait:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeper := &recordingSleeper{}
			bp := newTestBackpressure(100, now, sleeper)

			slept, err := bp.Wait(context.Background(), tt.quota)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlept, slept)
			if tt.wantSlept {
				assert.Equal(t, []time.Duration{tt.wantWait}, sleeper.waits)
			} else {
				assert.Empty(t, sleeper.waits)
			}
		})
	}
}

func TestBackpressureNilIsNoop(t *testing.T) {
	var bp *Backpressure
	slept, err := bp.Wait(context.Background(), schema.Quota{Limit: 10, Remaining: 0})
	assert.NoError(t, err)
	assert.False(t, slept)
}

func TestBackpressureSleepError(t *testing.T) {
	now := time.Now()
	sleeper := &recordingSleeper{err: context.Canceled}
	bp := newTestBackpressure(100, now, sleeper)

	slept, err := bp.Wait(context.Background(), schema.Quota{Limit: 5000, Remaining: 1, ResetAt: now.Add(time.Minute)})
	assert.True(t, slept)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepContext(t *testing.T) {
	t.Run("zero duration returns immediately", func(t *testing.T) {
		assert.NoError(t, SleepContext(context.Background(), 0))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
	})

	t.Run("short sleep completes", func(t *testing.T) {
		assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
	})
}
