package server

import (
	"strconv"
	"testing"

	"github.com/tidwall/assert"
	"github.com/ygmpkk/lineslice/internal/segment"
)

func TestSegmenterCache(t *testing.T) {
	c := newSegmenterCache(2)
	seg := segment.Compile(nil, nil)
	c.set("a", seg)
	c.set("b", seg)
	got, ok := c.get("a")
	assert.Assert(ok && got == seg)
	c.set("c", seg)
	// b was least recently used
	_, ok = c.get("b")
	assert.Assert(!ok)
	assert.Assert(c.len() == 2)

	c.resize(0)
	assert.Assert(c.len() == 0)
	c.set("d", seg)
	_, ok = c.get("d")
	assert.Assert(!ok)

	c.resize(8)
	for i := 0; i < 10; i++ {
		c.set(strconv.Itoa(i), seg)
	}
	assert.Assert(c.len() == 8)
}

func TestCacheKey(t *testing.T) {
	req := segmentRequest{area: `{"type":"Point"}`}
	req.opts.IndexEdges = 64
	k1 := cacheKey(&req)
	req.opts.Ordered = true
	k2 := cacheKey(&req)
	req.opts.DropDegenerate = true
	k3 := cacheKey(&req)
	assert.Assert(k1 != k2 && k2 != k3 && k1 != k3)
	assert.Assert(k3 == `64od:{"type":"Point"}`)
}
