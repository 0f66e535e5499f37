// Package ratelimit provides fixed-window admission control keyed by an
// arbitrary string (IP, user id, resource id). Each named action class owns
// its own limiter instance with an independent ceiling and window.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Admitter decides whether one more call for a key is allowed right now.
// The in-memory Limiter keeps counters per process; a shared-store
// implementation (RedisLimiter) can replace it behind the same contract.
type Admitter interface {
	Admit(key string) bool
}

// entry tracks one key's call count within its current admission window.
type entry struct {
	count         int
	windowResetAt time.Time
}

// Limiter is a fixed-window (not sliding) rate limiter. The first call for an
// unseen or expired key opens a new window starting now and admits; further
// calls within the window admit while count < ceiling.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	ceiling int
	window  time.Duration
	now     func() time.Time // injectable clock for deterministic tests
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the limiter's time source. Tests use this to advance
// time past the window without sleeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a limiter admitting at most 'ceiling' calls per key within each
// fixed window of the given duration.
func New(ceiling int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		ceiling: ceiling,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit reports whether one more call for the key is allowed, and counts it.
// Window creation and increment happen under a single critical section, so
// two concurrent first-calls for the same key cannot both open a window.
// A ceiling <= 0 always denies. Denial is final for the request; there are
// no retries here, the caller decides the response.
func (l *Limiter) Admit(key string) bool {
	if l.ceiling <= 0 {
		return false
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	ent, ok := l.entries[key]
	if !ok || !ent.windowResetAt.After(now) {
		// Nouvelle fenêtre de temps pour cette clé
		l.entries[key] = &entry{count: 1, windowResetAt: now.Add(l.window)}
		return true
	}

	if ent.count < l.ceiling {
		ent.count++
		return true
	}

	return false
}

// Remaining returns how many calls the key can still make in its current
// window. A key without a live window has the full ceiling available.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	ent, ok := l.entries[key]
	if !ok || !ent.windowResetAt.After(l.now()) {
		return l.ceiling
	}
	if left := l.ceiling - ent.count; left > 0 {
		return left
	}
	return 0
}

// Sweep removes entries whose window has elapsed. Admission stays correct
// without it (expired entries are replaced on the next Admit); sweeping only
// bounds memory for keys that never come back.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, ent := range l.entries {
		if !ent.windowResetAt.After(now) {
			delete(l.entries, key)
		}
	}
}

// Len returns the number of tracked keys. Used by tests and the sweeper log.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// StartSweeper launches a goroutine running Sweep periodically until the
// context is cancelled. Fire-and-forget: nothing consumes its result.
func (l *Limiter) StartSweeper(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Sweep()
			}
		}
	}()
}

// Key builds a namespaced rate-limit key, e.g. Key("ip", "1.2.3.4").
func Key(kind, identifier string) string {
	return fmt.Sprintf("%s:%s", kind, identifier)
}
