package cache

import (
	"context"
	"sync"
	"time"

	"github.com/retail/backoffice/internal/domain/shared"
)

// MemoryIdempotencyStore is an in-process implementation of
// shared.IdempotencyStore. It is the default for single-instance
// deployments and tests; use Redis when running multiple instances.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryIdempotencyStore creates an empty in-memory store
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// SetNX stores the key if absent and reports whether it was stored
func (s *MemoryIdempotencyStore) SetNX(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiry, ok := s.entries[key]; ok && now.Before(expiry) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	s.pruneLocked(now)
	return true, nil
}

// Release removes a key, allowing the operation to be retried
func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// pruneLocked drops expired entries so the map does not grow without
// bound. Caller must hold the mutex.
func (s *MemoryIdempotencyStore) pruneLocked(now time.Time) {
	for key, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, key)
		}
	}
}

var _ shared.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
