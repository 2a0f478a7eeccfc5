// internal/httpcache/memory.go
package httpcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemoryEntries caps a MemoryStore created with a non-positive size.
const DefaultMemoryEntries = 1000

// MemoryStore is a process-local Store bounded in entries. Entries are evicted
// once they expire or when the least recently used one makes room for a new
// key, whether or not they are read again.
type MemoryStore struct {
	lru *expirable.LRU[string, memoryEntry]
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore holding at most size entries,
// none of them for longer than maxTTL.
func NewMemoryStore(size int, maxTTL time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	return &MemoryStore{
		lru: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !time.Now().Before(e.expiresAt) {
		s.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value for ttl, or for the store's maxTTL if that is shorter.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.lru.Add(key, memoryEntry{value: value, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Len returns the number of entries currently held.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
