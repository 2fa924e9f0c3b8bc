package prefetch

import (
	"context"
	"sync"
	"time"

	"github.com/shelfd/shelf/internal/logger"
)

// DefaultDebounce is how long an id must stay in view before its detail
// fetch is scheduled. Fast scrolling enters and leaves within the window
// and never reaches the network.
const DefaultDebounce = 250 * time.Millisecond

// DefaultMaxConcurrent bounds simultaneous prefetch fetches.
const DefaultMaxConcurrent = 4

// FetchFunc loads the detail payload for one id.
type FetchFunc func(ctx context.Context, id string) error

// SatisfiedFunc reports whether id already has its detail loaded.
type SatisfiedFunc func(id string) bool

// Prefetcher warms detail data for ids as they scroll into view. Entries are
// debounced, leaving cancels a pending entry, and at most maxConcurrent
// fetches run at once. An admission attempt past the bound is dropped, not
// queued; the id will be re-entered if it is still in view later.
type Prefetcher struct {
	mu       sync.Mutex
	pending  map[string]*time.Timer
	inflight map[string]struct{}
	sem      chan struct{}
	stopped  bool

	debounce  time.Duration
	fetch     FetchFunc
	satisfied SatisfiedFunc
	logger    logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(fetch FetchFunc, satisfied SatisfiedFunc, debounce time.Duration, maxConcurrent int, log logger.Logger) *Prefetcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Prefetcher{
		pending:   make(map[string]*time.Timer),
		inflight:  make(map[string]struct{}),
		sem:       make(chan struct{}, maxConcurrent),
		debounce:  debounce,
		fetch:     fetch,
		satisfied: satisfied,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Enter schedules a debounced prefetch for id. Already-satisfied, pending,
// and in-flight ids are no-ops.
func (p *Prefetcher) Enter(id string) {
	if p.satisfied(id) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	if _, ok := p.pending[id]; ok {
		return
	}
	if _, ok := p.inflight[id]; ok {
		return
	}
	p.pending[id] = time.AfterFunc(p.debounce, func() { p.fire(id) })
}

// Leave cancels a pending prefetch for id. An already-started fetch is left
// to finish; its result is useful either way.
func (p *Prefetcher) Leave(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.pending[id]; ok {
		t.Stop()
		delete(p.pending, id)
	}
}

// Stop cancels every pending timer and in-flight fetch and waits for the
// workers to drain.
func (p *Prefetcher) Stop() {
	p.mu.Lock()
	p.stopped = true
	for id, t := range p.pending {
		t.Stop()
		delete(p.pending, id)
	}
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// Pending reports how many ids are waiting out their debounce. Test hook.
func (p *Prefetcher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *Prefetcher) fire(id string) {
	// The debounce window may have outlived the need. Checked outside the
	// lock, like Enter: the wired check can be an I/O round trip and must
	// not stall Enter/Leave traffic.
	done := p.satisfied(id)

	p.mu.Lock()
	delete(p.pending, id)
	if p.stopped || done {
		p.mu.Unlock()
		return
	}

	select {
	case p.sem <- struct{}{}:
	default:
		p.mu.Unlock()
		p.logger.Debug("prefetch dropped at concurrency bound", logger.String("id", id))
		return
	}

	p.inflight[id] = struct{}{}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer func() {
			<-p.sem
			p.mu.Lock()
			delete(p.inflight, id)
			p.mu.Unlock()
		}()

		if err := p.fetch(p.ctx, id); err != nil {
			// Prefetch is best effort; the on-demand path retries.
			p.logger.Debug("prefetch failed", logger.String("id", id), logger.Error(err))
		}
	}()
}
