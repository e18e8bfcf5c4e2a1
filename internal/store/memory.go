package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store used in tests. MaxEntries simulates a
// finite quota: once the store holds that many keys, Put of a new key fails
// with ErrQuotaExceeded the way a full durable store would.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte

	// MaxEntries caps the number of keys when > 0.
	MaxEntries int

	// FailPuts forces every Put to fail (write-failure simulation).
	FailPuts bool
}

// NewMemoryStore creates an empty in-memory store with no quota.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get returns the value under key, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put stores a copy of the value, honoring FailPuts and MaxEntries.
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPuts {
		return ErrQuotaExceeded
	}
	if _, exists := s.entries[key]; !exists && s.MaxEntries > 0 && len(s.entries) >= s.MaxEntries {
		return ErrQuotaExceeded
	}
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Keys lists all keys under the prefix.
func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
