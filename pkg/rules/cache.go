package rules

import (
	"sync"

	"github.com/cleansh/cleansh/pkg/model"
)

// Cache memoizes compiled rule sets by their deterministic content hash.
// Readers proceed in parallel; a writer lock is taken only when inserting
// after a cache miss.
type Cache struct {
	mu    sync.RWMutex
	byKey map[string]*CompiledRules
}

// NewCache creates an empty compile cache.
func NewCache() *Cache {
	return &Cache{byKey: make(map[string]*CompiledRules)}
}

// GetOrCompile returns the shared CompiledRules for cfg, compiling and
// inserting into the cache on a miss.
func (c *Cache) GetOrCompile(cfg model.RedactionConfig) (*CompiledRules, error) {
	key := HashRules(cfg.Rules)

	c.mu.RLock()
	if cr, ok := c.byKey[key]; ok {
		c.mu.RUnlock()
		return cr, nil
	}
	c.mu.RUnlock()

	cr, err := Compile(cfg.Rules)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byKey[key]; ok {
		return existing, nil
	}
	c.byKey[key] = cr
	return cr, nil
}

// Len reports the number of distinct compiled sets currently cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
