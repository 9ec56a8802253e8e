// Package timeouts provides centralized timeout values for I/O-bound
// operations. Two tiers are enough for this service: Ping for health
// checks and connection verification, Batch for the expiry sweep and
// city teardowns.
//
// Values can be overridden from the environment at startup via
// ConfigureFromEnv; otherwise the defaults apply.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used unless overridden).
const (
	DefaultPing  = 2 * time.Second
	DefaultBatch = 60 * time.Second
)

// mu protects the timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping  = DefaultPing
	batch = DefaultBatch
)

// Ping returns the timeout for health checks and connectivity
// verification.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Batch returns the timeout for bulk operations: expiry sweeps, city
// teardowns.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// ConfigureFromEnv reads timeout overrides from the environment:
//   - TIMEOUT_PING: e.g., "2s", "500ms"
//   - TIMEOUT_BATCH: e.g., "60s", "2m"
//
// Invalid or unset variables keep the current value. Returns the number
// of timeouts overridden.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	configured := 0

	if v := os.Getenv("TIMEOUT_PING"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ping = d
			configured++
		}
	}
	if v := os.Getenv("TIMEOUT_BATCH"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			batch = d
			configured++
		}
	}

	return configured
}

// WithTimeout creates a context with timeout and returns a cancel
// function that logs a warning if the deadline was exceeded.
//
// Example:
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Batch(), log, "expiry sweep")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
