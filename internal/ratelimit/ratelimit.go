// Package ratelimit counts requests per key in fixed one-minute windows.
// Redis holds the counters when configured so limits are shared across
// instances; otherwise they live in process memory.
package ratelimit

import (
	"context"
	"time"
)

// Window is the length of one counting window.
const Window = time.Minute

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
