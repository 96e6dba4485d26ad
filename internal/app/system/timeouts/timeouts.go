// Package timeouts provides centralized timeout values for storage operations
// started from handlers and jobs.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing    = 2 * time.Second
	DefaultListing = 10 * time.Second
	DefaultWalk    = 60 * time.Second
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping    = DefaultPing
	listing = DefaultListing
	walk    = DefaultWalk
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Listing returns the timeout for listing one folder, including the
// aggregate sizes of its subfolders.
func Listing() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return listing
}

// Walk returns the timeout for whole-tree walks such as the storage total
// and recursive search.
func Walk() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return walk
}

// Config holds timeout configuration values.
type Config struct {
	Ping    time.Duration
	Listing time.Duration
	Walk    time.Duration
}

// Configure sets custom timeout values. Zero fields keep the current value.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Listing > 0 {
		listing = cfg.Listing
	}
	if cfg.Walk > 0 {
		walk = cfg.Walk
	}
}

// Reset restores all timeouts to defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	listing = DefaultListing
	walk = DefaultWalk
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Listing: listing, Walk: walk}
}

// WithTimeout creates a context with timeout and logging.
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
