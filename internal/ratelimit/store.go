// Package ratelimit implements the per-client sliding-window log limiter
// guarding the contact endpoint. Exact request timestamps are kept per
// client identifier and filtered against the window on every check, giving
// precise boundaries; memory stays bounded because the per-window maximum
// is small and a low-probability sweep prunes idle clients.
package ratelimit

import "sync"

// Store abstracts the per-client timestamp log so the in-process map can
// later be swapped for an external store without touching the limiter.
// Timestamps are epoch milliseconds.
type Store interface {
	// Get returns the recorded timestamps for id (possibly empty).
	Get(id string) []int64
	// Put replaces the timestamps recorded for id.
	Put(id string, timestamps []int64)
	// Prune drops every timestamp older than cutoff across all clients and
	// deletes clients whose log becomes empty.
	Prune(cutoff int64)
	// Delete removes all state for id.
	Delete(id string)
}

// MemoryStore is the default in-process Store: a mutex-guarded map. It is
// safe for concurrent use. Get returns a copy so callers can filter without
// holding the lock.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]int64)}
}

// Get implements Store.
func (s *MemoryStore) Get(id string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.entries[id]
	out := make([]int64, len(ts))
	copy(out, ts)
	return out
}

// Put implements Store.
func (s *MemoryStore) Put(id string, timestamps []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(timestamps) == 0 {
		delete(s.entries, id)
		return
	}
	s.entries[id] = timestamps
}

// Prune implements Store.
func (s *MemoryStore) Prune(cutoff int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ts := range s.entries {
		kept := ts[:0]
		for _, t := range ts {
			if t > cutoff {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(s.entries, id)
			continue
		}
		s.entries[id] = kept
	}
}

// Delete implements Store.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len reports the number of tracked clients. Used by tests and the sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
