// Package ratelimit bounds the number of lead submissions accepted
// from one client identifier within a trailing window.
package ratelimit

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ratelimit")

// Limiter decides whether another attempt from key is allowed right
// now. Implementations are fail-open: when the backing store is
// unavailable the attempt is allowed, because blocking a real lead is
// worse than letting a burst through.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Config bounds attempts per identifier.
type Config struct {
	// MaxAttempts within the trailing Window.
	MaxAttempts int
	Window      time.Duration
}

// DefaultConfig mirrors the production limits: 10 attempts per 10
// minutes per client IP.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 10,
		Window:      10 * time.Minute,
	}
}
