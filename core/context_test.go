package core

import (
	"context"
	"sync"
	"testing"

	"github.com/huangsam/ghsnap/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	logger := logging.Discard()
	ctx := withSuppressHeader(context.Background())
	ctx = WithLogger(ctx, logger)
	ctx = WithProgress(ctx, func(int, int, string) {})

	const numGoroutines = 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := range numGoroutines {
		go func(id int) {
			defer wg.Done()
			assert.True(t, shouldSuppressHeader(ctx), "Goroutine %d: shouldSuppressHeader should be true", id)
			assert.Same(t, logger, loggerFrom(ctx), "Goroutine %d: loggerFrom should return the attached logger", id)
			assert.NotNil(t, progressFrom(ctx), "Goroutine %d: progressFrom should return the callback", id)
		}(i)
	}
	wg.Wait()
}

// TestContextDefaults tests the values returned for a bare context.
func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	assert.Same(t, logrus.StandardLogger(), loggerFrom(ctx))
	assert.Nil(t, progressFrom(ctx))
}

// TestContextIsolation tests that different contexts maintain isolation.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	first := logging.Discard()
	second := logging.Discard()

	ctx1 := WithLogger(base, first)
	ctx2 := WithLogger(base, second)
	ctx3 := withSuppressHeader(base)

	assert.Same(t, first, loggerFrom(ctx1))
	assert.Same(t, second, loggerFrom(ctx2))
	assert.False(t, shouldSuppressHeader(ctx1))
	assert.True(t, shouldSuppressHeader(ctx3))
	assert.Same(t, logrus.StandardLogger(), loggerFrom(ctx3))
}
