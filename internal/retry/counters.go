package retry

import "sync"

// Counters tracks upstream calls by operation name. Safe for concurrent use
// by all workers sharing one policy.
type Counters struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewCounters() *Counters {
	return &Counters{counts: make(map[string]int64)}
}

func (c *Counters) Add(operation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[operation]++
}

// Snapshot returns a copy of the current counts.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counts))
	for op, n := range c.counts {
		out[op] = n
	}
	return out
}

// Total returns the sum across all operations.
func (c *Counters) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, n := range c.counts {
		total += n
	}
	return total
}
