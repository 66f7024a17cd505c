package crm

import "sync"

// TagCache maps tag names to remote tag ids. Entries are never invalidated;
// stage tag names are static configuration. Construct one per process and
// share it between adapters.
type TagCache struct {
	mu  sync.RWMutex
	ids map[string]string
}

func NewTagCache() *TagCache {
	return &TagCache{ids: make(map[string]string)}
}

func (c *TagCache) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[name]
	return id, ok
}

func (c *TagCache) Set(name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[name] = id
}

func (c *TagCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}
