package runner

import (
	"sync"

	"github.com/probeworks/slaq/internal/eval"
)

// OutcomeCache is a thread-safe cache of the latest evaluation outcome per
// signal, backing the readiness and status endpoints.
type OutcomeCache struct {
	mu       sync.RWMutex
	outcomes map[string]eval.Outcome
}

// NewOutcomeCache creates a new outcome cache
func NewOutcomeCache() *OutcomeCache {
	return &OutcomeCache{
		outcomes: make(map[string]eval.Outcome),
	}
}

// Get retrieves the cached outcome for a signal
func (c *OutcomeCache) Get(name string) (eval.Outcome, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	outcome, exists := c.outcomes[name]
	return outcome, exists
}

// Set stores the latest outcome for a signal
func (c *OutcomeCache) Set(name string, outcome eval.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.outcomes[name] = outcome
}

// Snapshot returns a copy of all cached outcomes
func (c *OutcomeCache) Snapshot() map[string]eval.Outcome {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]eval.Outcome, len(c.outcomes))
	for k, v := range c.outcomes {
		snapshot[k] = v
	}

	return snapshot
}

// Size returns the number of cached outcomes
func (c *OutcomeCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.outcomes)
}
