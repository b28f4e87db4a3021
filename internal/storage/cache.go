// Package storage provides step cache and favorites persistence
// implementations.
package storage

import (
	"sync"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Compile-time interface check.
var _ domain.StepCache = (*MemoryStepCache)(nil)

// MemoryStepCache memoizes generated steps for the lifetime of the
// process. Entries are written once per key and copied on the way in and
// out, so a reader never sees a list that is still being built.
// There is no eviction.
type MemoryStepCache struct {
	mu      sync.RWMutex
	entries map[domain.RecipeSignature][]domain.CookingStep
	log     *logger.Logger
}

// NewMemoryStepCache creates an empty cache.
func NewMemoryStepCache(log *logger.Logger) *MemoryStepCache {
	return &MemoryStepCache{
		entries: make(map[domain.RecipeSignature][]domain.CookingStep),
		log:     log,
	}
}

// Get returns the cached steps for sig.
func (c *MemoryStepCache) Get(sig domain.RecipeSignature) ([]domain.CookingStep, bool) {
	c.mu.RLock()
	steps, ok := c.entries[sig]
	c.mu.RUnlock()

	if !ok {
		c.log.Debug("step cache miss: %s", sig)
		return nil, false
	}
	c.log.Debug("step cache hit: %s (%d steps)", sig, len(steps))
	return domain.CloneSteps(steps), true
}

// Put stores steps for sig, replacing any previous entry.
func (c *MemoryStepCache) Put(sig domain.RecipeSignature, steps []domain.CookingStep) {
	stored := domain.CloneSteps(steps)
	if stored == nil {
		stored = []domain.CookingStep{}
	}

	c.mu.Lock()
	c.entries[sig] = stored
	c.mu.Unlock()

	c.log.Debug("step cache put: %s (%d steps)", sig, len(stored))
}

// Len returns the number of cached signatures.
func (c *MemoryStepCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *MemoryStepCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[domain.RecipeSignature][]domain.CookingStep)
	c.log.Debug("step cache cleared")
}
