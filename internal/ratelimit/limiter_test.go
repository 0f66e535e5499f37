package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a controllable time source for deterministic window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_AdmitsUpToCeilingThenDenies(t *testing.T) {
	limiter := New(3, time.Minute)

	// Calls 1-3 for a fresh key all admit
	for i := 1; i <= 3; i++ {
		assert.True(t, limiter.Admit("k"), "call %d should be admitted", i)
	}

	// Call 4 within the same window denies
	assert.False(t, limiter.Admit("k"), "call above the ceiling should be denied")
}

func TestLimiter_FreshWindowAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	limiter := New(3, time.Minute, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Admit("k"))
	}
	require.False(t, limiter.Admit("k"))

	// Past the window the same key starts over from a fresh count of 1
	clock.Advance(61 * time.Second)
	assert.True(t, limiter.Admit("k"))
	assert.True(t, limiter.Admit("k"))
	assert.Equal(t, 1, limiter.Remaining("k"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter := New(1, time.Minute)

	assert.True(t, limiter.Admit("a"))
	assert.False(t, limiter.Admit("a"))
	assert.True(t, limiter.Admit("b"), "a saturated key must not affect other keys")
}

func TestLimiter_ZeroCeilingAlwaysDenies(t *testing.T) {
	limiter := New(0, time.Minute)

	assert.False(t, limiter.Admit("k"))
	assert.False(t, limiter.Admit("k"))
}

func TestLimiter_ConcurrentFirstCallsOpenOneWindow(t *testing.T) {
	limiter := New(50, time.Minute)

	// 100 concurrent calls for the same never-seen key: exactly the ceiling
	// must be admitted, which can only happen if window creation is atomic.
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Admit("k") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, admitted)
	assert.Equal(t, 1, limiter.Len())
}

func TestLimiter_SweepRemovesExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	limiter := New(5, time.Minute, WithClock(clock.Now))

	limiter.Admit("old")
	clock.Advance(2 * time.Minute)
	limiter.Admit("fresh")

	require.Equal(t, 2, limiter.Len())
	limiter.Sweep()

	assert.Equal(t, 1, limiter.Len(), "only the live window should survive the sweep")
	// Admission for the swept key starts a new window as usual
	assert.True(t, limiter.Admit("old"))
}

func TestLimiter_SweeperStopsWithContext(t *testing.T) {
	limiter := New(5, 10*time.Millisecond)
	limiter.Admit("k")

	ctx, cancel := context.WithCancel(context.Background())
	limiter.StartSweeper(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return limiter.Len() == 0 },
		500*time.Millisecond, 5*time.Millisecond, "sweeper should reclaim the expired entry")

	cancel()
}

func TestKey(t *testing.T) {
	assert.Equal(t, "ip:10.0.0.1", Key("ip", "10.0.0.1"))
}
