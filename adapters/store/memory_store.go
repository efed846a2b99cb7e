package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/walletauth/ports"
)

// sweepInterval bounds how often RevokeSession scans for expired entries
const sweepInterval = time.Minute

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	revoked   map[string]time.Time
	mu        sync.RWMutex
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.Store {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		now:     now,
	}
}

// RevokeSession marks a session ID as revoked until expiry has elapsed
func (s *MemoryStore) RevokeSession(ctx context.Context, sessionID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
	}

	if expiry <= 0 {
		return nil
	}

	until := now.Add(expiry)
	if stored, exists := s.revoked[sessionID]; !exists || stored.Before(until) {
		s.revoked[sessionID] = until
	}

	return nil
}

// IsSessionRevoked checks if a session ID is revoked
func (s *MemoryStore) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	until, exists := s.revoked[sessionID]
	s.mu.RUnlock()

	if !exists {
		return false, nil
	}

	now := s.now()
	if now.Before(until) {
		return true, nil
	}

	s.mu.Lock()
	// A concurrent revocation may have extended the entry
	if stored, ok := s.revoked[sessionID]; ok && !now.Before(stored) {
		delete(s.revoked, sessionID)
	}
	s.mu.Unlock()

	return false, nil
}

// sweep drops entries whose cookies can no longer be presented.
// Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	for id, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, id)
		}
	}
	s.lastSweep = now
}
