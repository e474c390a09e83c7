package server

import (
	"sync"

	"github.com/tidwall/tinylru"
	"github.com/ygmpkk/lineslice/internal/segment"
)

// segmenterCache holds compiled segmenters keyed by their source. A size of
// zero disables caching.
type segmenterCache struct {
	mu   sync.RWMutex
	size int
	lru  tinylru.LRU
}

func newSegmenterCache(size int) *segmenterCache {
	c := &segmenterCache{}
	c.resize(size)
	return c
}

func (c *segmenterCache) resize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size <= 0 {
		c.size = 0
		c.lru = tinylru.LRU{}
		return
	}
	c.size = size
	c.lru.Resize(size)
}

func (c *segmenterCache) get(key string) (*segment.Segmenter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.size == 0 {
		return nil, false
	}
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*segment.Segmenter), true
}

func (c *segmenterCache) set(key string, seg *segment.Segmenter) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.size == 0 {
		return
	}
	c.lru.Set(key, seg)
}

func (c *segmenterCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.size == 0 {
		return 0
	}
	return c.lru.Len()
}
