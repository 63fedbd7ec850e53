package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
)

// InMemoryFingerprintStore implements FingerprintStore with a map.
// State is per process, so it only suits single-instance deployments and tests.
type InMemoryFingerprintStore struct {
	mu        sync.RWMutex
	entries   map[string]time.Time // fingerprint -> expiry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryFingerprintStore creates the store and starts a goroutine that
// drops expired entries every interval
func NewInMemoryFingerprintStore(interval time.Duration) *InMemoryFingerprintStore {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	store := &InMemoryFingerprintStore{
		entries:  make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(interval)

	return store
}

// MarkProcessed marks a fingerprint with a TTL.
// Returns true if the fingerprint was newly marked, false if it was already present
func (s *InMemoryFingerprintStore) MarkProcessed(_ context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, ok := s.entries[fingerprint]; ok && now.Before(expiresAt) {
		return false, nil
	}
	s.entries[fingerprint] = now.Add(ttl)
	return true, nil
}

// IsProcessed checks whether a fingerprint is still inside its window
func (s *InMemoryFingerprintStore) IsProcessed(_ context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.entries[fingerprint]
	return ok && s.now().Before(expiresAt), nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryFingerprintStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryFingerprintStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired entries
func (s *InMemoryFingerprintStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for fp, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, fp)
		}
	}
}

// Size returns the number of entries, expired ones included until the next cleanup
func (s *InMemoryFingerprintStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ shared.FingerprintStore = (*InMemoryFingerprintStore)(nil)
