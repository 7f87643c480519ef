package service

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/olegrjumin/privacyparrot/internal/analysis"
)

// resultCache keeps the latest result per page key, evicting the least
// recently used page once size is reached. Every removal starts a new
// generation; results computed under an older generation are not stored.
type resultCache struct {
	mu         sync.Mutex
	entries    *lru.Cache[string, *analysis.Result] // nil when the memo is disabled
	generation uint64
}

func newResultCache(size int) *resultCache {
	c := &resultCache{}
	if size > 0 {
		// lru.New only fails for a non-positive size
		c.entries, _ = lru.New[string, *analysis.Result](size)
	}
	return c
}

func (c *resultCache) get(key string) (*analysis.Result, bool) {
	if c.entries == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

// current returns the generation an analysis starts under
func (c *resultCache) current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// put stores a result computed under generation gen. It reports false when
// the memo is disabled or a removal happened since gen.
func (c *resultCache) put(key string, result *analysis.Result, gen uint64) bool {
	if c.entries == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return false
	}
	c.entries.Add(key, result)
	return true
}

func (c *resultCache) remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.entries == nil {
		return false
	}
	return c.entries.Remove(key)
}

func (c *resultCache) len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}
