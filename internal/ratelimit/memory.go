package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start    time.Time
	requests int
}

// Memory is an in-process fixed-window limiter.
type Memory struct {
	mu      sync.Mutex
	limit   int
	windows map[string]*window
	now     func() time.Time
}

// NewMemory creates a limiter that allows limit requests per key per Window.
func NewMemory(limit int) *Memory {
	return &Memory{
		limit:   limit,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow implements Limiter. Expired windows are dropped lazily.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= Window {
		m.sweep(now)
		m.windows[key] = &window{start: now, requests: 1}
		return true, nil
	}

	w.requests++
	return w.requests <= m.limit, nil
}

// sweep removes windows that have expired. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	for key, w := range m.windows {
		if now.Sub(w.start) >= Window {
			delete(m.windows, key)
		}
	}
}
