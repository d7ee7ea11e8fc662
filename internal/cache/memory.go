package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"bundler/internal/source"
)

// Memory is a bounded per-process cache.
type Memory struct {
	lru *lru.Cache[source.Digest, *Payload]
}

// NewMemory creates a Memory cache holding up to size payloads.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[source.Digest, *Payload](size)
	if err != nil {
		panic(err)
	}
	return &Memory{lru: c}
}

func (m *Memory) Get(key source.Digest) (*Payload, bool) {
	if m == nil {
		return nil, false
	}
	p, ok := m.lru.Get(key)
	if !ok || !p.valid() {
		return nil, false
	}
	return p, true
}

func (m *Memory) Put(key source.Digest, p *Payload) {
	if m == nil || p == nil {
		return
	}
	m.lru.Add(key, p)
}

func (m *Memory) Len() int {
	if m == nil {
		return 0
	}
	return m.lru.Len()
}
