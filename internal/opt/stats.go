package opt

import "sync"

// statsRegistry keeps the most recent RunStats per method. Records are
// written once and never mutated, so handing out shallow copies is safe.
type statsRegistry struct {
	mu   sync.Mutex
	last map[string]RunStats
}

func newStatsRegistry() *statsRegistry {
	return &statsRegistry{last: map[string]RunStats{}}
}

func (r *statsRegistry) record(s RunStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[s.Method] = s
}

// LastRuns returns a copy of the most recent run per method.
func (e *Engine) LastRuns() map[string]RunStats {
	e.stats.mu.Lock()
	defer e.stats.mu.Unlock()
	out := make(map[string]RunStats, len(e.stats.last))
	for k, v := range e.stats.last {
		out[k] = v
	}
	return out
}
