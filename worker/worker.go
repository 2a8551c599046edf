package worker

import (
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"
)

// Pool delivers fire-and-forget side effects (sink records, notifications,
// corrections) off the event path. Work is sharded into lanes: submissions
// with the same key land on the same lane, so delivery order per player is
// preserved for audit coherence.
type Pool struct {
	// mu guards lanes against Close: a submission in flight must never race
	// the channels being closed.
	mu      sync.RWMutex
	lanes   []chan func()
	wg      sync.WaitGroup
	closed  bool
	dropped atomic.Uint64
}

// NewPool starts a pool with the given number of lanes, defaulting to one per
// CPU.
func NewPool(lanes int) *Pool {
	if lanes <= 0 {
		lanes = runtime.NumCPU()
	}
	p := &Pool{lanes: make([]chan func(), lanes)}
	for i := range p.lanes {
		ch := make(chan func(), 1024)
		p.lanes[i] = ch
		p.wg.Add(1)
		go p.work(ch)
	}
	return p
}

func (p *Pool) work(ch chan func()) {
	defer p.wg.Done()
	defer sentry.Recover()

	for f := range ch {
		f()
	}
}

// Submit queues f on the lane for key. Submission never blocks: when the lane
// is saturated the work is dropped, since this path is best-effort by
// contract.
func (p *Pool) Submit(key string, f func()) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	lane := p.lanes[xxh3.HashString(key)%uint64(len(p.lanes))]
	select {
	case lane <- f:
	default:
		p.dropped.Inc()
	}
}

// Dropped returns how many submissions were discarded due to saturation.
func (p *Pool) Dropped() uint64 {
	return p.dropped.Load()
}

// Close stops accepting work and waits for queued work to drain.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, ch := range p.lanes {
		close(ch)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
