package cache

import (
	"sync"
	"sync/atomic"
)

// probeKey identifies one provider/model probe.
type probeKey struct {
	provider string
	model    string
}

// ProbeMemo records dynamic probe outcomes for the lifetime of the process.
// Accepted and rejected results are both remembered, so a model asked about
// twice never triggers a second probe. Nothing is persisted: probe answers
// depend on network state and remote catalogs, which can change between
// runs.
type ProbeMemo struct {
	mu      sync.RWMutex
	results map[probeKey]bool

	// Statistics
	hitCount  int64
	missCount int64
}

// NewProbeMemo creates an empty probe memo.
func NewProbeMemo() *ProbeMemo {
	return &ProbeMemo{
		results: make(map[probeKey]bool),
	}
}

// Get returns the remembered outcome for a provider/model pair.
// The second return reports whether the pair has been probed.
func (p *ProbeMemo) Get(provider, model string) (accepted, ok bool) {
	p.mu.RLock()
	accepted, ok = p.results[probeKey{provider: provider, model: model}]
	p.mu.RUnlock()

	if ok {
		atomic.AddInt64(&p.hitCount, 1)
	} else {
		atomic.AddInt64(&p.missCount, 1)
	}

	return accepted, ok
}

// Set remembers the outcome of one probe.
func (p *ProbeMemo) Set(provider, model string, accepted bool) {
	p.mu.Lock()
	p.results[probeKey{provider: provider, model: model}] = accepted
	p.mu.Unlock()
}

// Len returns the number of remembered probes.
func (p *ProbeMemo) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.results)
}

// Stats returns hit and miss counts for diagnostics.
func (p *ProbeMemo) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&p.hitCount), atomic.LoadInt64(&p.missCount)
}
