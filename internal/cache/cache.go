package cache

import (
	"sync/atomic"

	"bundler/internal/source"
)

// Cache layers Memory over an optional Disk.
type Cache struct {
	mem  *Memory
	disk *Disk

	hits   atomic.Int64
	misses atomic.Int64
}

// New returns a cache; disk may be nil.
func New(mem *Memory, disk *Disk) *Cache {
	if mem == nil {
		mem = NewMemory(0)
	}
	return &Cache{mem: mem, disk: disk}
}

// Get looks in memory first and promotes disk hits. Disk read errors count
// as misses.
func (c *Cache) Get(key source.Digest) (*Payload, bool) {
	if c == nil {
		return nil, false
	}
	if p, ok := c.mem.Get(key); ok {
		c.hits.Add(1)
		return p, true
	}
	if c.disk != nil {
		if p, ok, err := c.disk.Get(key); err == nil && ok {
			c.mem.Put(key, p)
			c.hits.Add(1)
			return p, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Put stores p in every layer.
func (c *Cache) Put(key source.Digest, p *Payload) error {
	if c == nil {
		return nil
	}
	c.mem.Put(key, p)
	if c.disk != nil {
		return c.disk.Put(key, p)
	}
	return nil
}

// Stats reports hits and misses since creation.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
