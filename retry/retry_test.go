package retry

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastConfig keeps the backoff schedule short enough for tests.
func fastConfig(attempts uint64) Config {
	return Config{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func alwaysRetryable(error) bool { return true }

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(testLogger(), fastConfig(4), "fetch", alwaysRetryable, func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientFailure(t *testing.T) {
	calls := 0
	got, err := Do(testLogger(), fastConfig(4), "fetch", alwaysRetryable, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("connection reset")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	sentinel := errors.New("precondition failed")
	calls := 0
	_, err := Do(testLogger(), fastConfig(4), "update", func(error) bool { return false }, func() (string, error) {
		calls++
		return "", sentinel
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls, "authoritative rejections must not be re-applied")
}

func TestDoExhaustsAttemptBudget(t *testing.T) {
	calls := 0
	_, err := Do(testLogger(), fastConfig(3), "fetch", alwaysRetryable, func() (string, error) {
		calls++
		return "", errors.New("still down")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoDefaultsApplied(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultConfig.MaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultConfig.InitialInterval, cfg.InitialInterval)
	assert.Equal(t, DefaultConfig.MaxInterval, cfg.MaxInterval)
}
