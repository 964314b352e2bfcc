// Package retry wraps network operations with bounded exponential backoff.
// It is stateless: every call builds a fresh backoff schedule.
package retry

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config bounds one retry sequence.
type Config struct {
	MaxAttempts     uint64 // total tries including the first
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig retries three times after the initial attempt. Jitter is
// always applied (backoff randomization), so simultaneous failures against
// the same server do not re-fire in lockstep.
var DefaultConfig = Config{
	MaxAttempts:     4,
	InitialInterval: 250 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = DefaultConfig.InitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = DefaultConfig.MaxInterval
	}
	return c
}

// Do runs op until it succeeds, a non-retryable failure occurs, or the
// attempt budget is exhausted. retryable decides whether an error is
// transient; a conflict or any other authoritative rejection must report
// false there so it propagates immediately instead of being re-applied with
// a stale precondition.
func Do[T any](logger *slog.Logger, cfg Config, label string, retryable func(error) bool, op func() (T, error)) (T, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	wrapped := func() (T, error) {
		v, err := op()
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	notify := func(err error, wait time.Duration) {
		logger.Debug("retrying after transient failure",
			"operation", label,
			"wait", wait,
			"error", err)
	}

	return backoff.RetryNotifyWithData(wrapped, backoff.WithMaxRetries(b, cfg.MaxAttempts-1), notify)
}
