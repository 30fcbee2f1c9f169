// Package memo provides a sharded, concurrency-safe memo table keyed by string.
package memo

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 32

type shard[V any] struct {
	mu     sync.RWMutex
	values map[string]V
}

// Map memoizes values per key. The zero value is not usable; call New.
type Map[V any] struct {
	shards [shardCount]*shard[V]
}

// New creates an empty Map.
func New[V any]() *Map[V] {
	m := &Map[V]{}
	for i := range m.shards {
		m.shards[i] = &shard[V]{values: make(map[string]V)}
	}
	return m
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	return m.shards[xxhash.Sum64String(key)%shardCount]
}

// Get returns the value stored for key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetOrCompute returns the value for key, computing and storing it on a miss.
// compute runs outside the lock, so concurrent misses may compute more than
// once; the first stored value wins.
func (m *Map[V]) GetOrCompute(key string, compute func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	v := compute()

	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.values[key]; ok {
		return existing
	}
	s.values[key] = v
	return v
}

// Len returns the number of memoized keys.
func (m *Map[V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.values)
		s.mu.RUnlock()
	}
	return n
}
