package prefetch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfd/shelf/internal/logger"
)

// recorder counts fetches and can hold them open.
type recorder struct {
	mu      sync.Mutex
	fetched map[string]int
	cached  map[string]bool
	hold    chan struct{} // nil means return immediately
}

func newRecorder() *recorder {
	return &recorder{fetched: make(map[string]int), cached: make(map[string]bool)}
}

func (r *recorder) fetch(ctx context.Context, id string) error {
	r.mu.Lock()
	r.fetched[id]++
	hold := r.hold
	r.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	r.cached[id] = true
	r.mu.Unlock()
	return nil
}

func (r *recorder) satisfied(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cached[id]
}

func (r *recorder) count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetched[id]
}

func TestEnterFetchesAfterDebounce(t *testing.T) {
	r := newRecorder()
	p := New(r.fetch, r.satisfied, 5*time.Millisecond, 4, logger.NewNop())
	defer p.Stop()

	p.Enter("b1")
	assert.Equal(t, 0, r.count("b1"), "fetch must wait out the debounce")

	assert.Eventually(t, func() bool { return r.count("b1") == 1 }, time.Second, time.Millisecond)
}

func TestLeaveBeforeDebounceCancels(t *testing.T) {
	r := newRecorder()
	p := New(r.fetch, r.satisfied, 20*time.Millisecond, 4, logger.NewNop())
	defer p.Stop()

	// Fast scroll: a burst of ids enters and leaves inside the window.
	for _, id := range []string{"b1", "b2", "b3"} {
		p.Enter(id)
	}
	for _, id := range []string{"b1", "b2", "b3"} {
		p.Leave(id)
	}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, r.count("b1"))
	assert.Equal(t, 0, r.count("b2"))
	assert.Equal(t, 0, r.count("b3"))
	assert.Equal(t, 0, p.Pending())
}

func TestSatisfiedIDIsNeverFetched(t *testing.T) {
	r := newRecorder()
	r.cached["b1"] = true
	p := New(r.fetch, r.satisfied, time.Millisecond, 4, logger.NewNop())
	defer p.Stop()

	p.Enter("b1")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, r.count("b1"))
}

func TestReenterWhileInFlightIsNoOp(t *testing.T) {
	r := newRecorder()
	r.hold = make(chan struct{})
	p := New(r.fetch, r.satisfied, time.Millisecond, 4, logger.NewNop())

	p.Enter("b1")
	require.Eventually(t, func() bool { return r.count("b1") == 1 }, time.Second, time.Millisecond)

	// Scrolled out and back in while the first fetch is still running.
	p.Enter("b1")
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, r.count("b1"), "in-flight id must not be fetched twice")

	close(r.hold)
	p.Stop()
}

func TestConcurrencyBoundDropsExcess(t *testing.T) {
	r := newRecorder()
	r.hold = make(chan struct{})
	p := New(r.fetch, r.satisfied, time.Millisecond, 2, logger.NewNop())

	for _, id := range []string{"b1", "b2", "b3", "b4", "b5"} {
		p.Enter(id)
	}

	// Two slots fill, the rest are dropped at admission.
	time.Sleep(30 * time.Millisecond)
	r.mu.Lock()
	started := len(r.fetched)
	r.mu.Unlock()
	assert.Equal(t, 2, started)

	close(r.hold)
	p.Stop()
}

func TestSlowSatisfiedCheckDoesNotBlockLeave(t *testing.T) {
	// The wired satisfied check can be a network round trip. While the
	// post-debounce check is in flight, Enter/Leave traffic must keep moving.
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	satisfied := func(id string) bool {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			return false // admission check from Enter
		}
		close(entered)
		<-release
		return true
	}
	fetch := func(ctx context.Context, id string) error { return nil }
	p := New(fetch, satisfied, time.Millisecond, 4, logger.NewNop())

	p.Enter("slow")
	<-entered

	done := make(chan struct{})
	go func() {
		p.Leave("slow")
		_ = p.Pending()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Leave blocked behind a slow satisfied check")
	}

	close(release)
	p.Stop()
}

func TestStopCancelsPendingAndInflight(t *testing.T) {
	r := newRecorder()
	r.hold = make(chan struct{})
	p := New(r.fetch, r.satisfied, time.Millisecond, 4, logger.NewNop())

	p.Enter("b1")
	require.Eventually(t, func() bool { return r.count("b1") == 1 }, time.Second, time.Millisecond)
	p.Enter("b2") // still pending when Stop hits

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop must cancel the held fetch instead of waiting on it")
	}

	assert.Equal(t, 0, r.count("b2"))
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.False(t, r.cached["b1"], "cancelled fetch must not complete")
}
