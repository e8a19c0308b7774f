package store

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

var _ ports.NonceStore = (*MemoryNonceStore)(nil)

type nonceEntry struct {
	nonce     string
	expiresAt time.Time
}

// MemoryNonceStore is an in-memory implementation of the NonceStore interface.
// Nonces live in this process only.
type MemoryNonceStore struct {
	nonces map[string]nonceEntry
	mu     sync.Mutex
	now    func() time.Time
}

// NewMemoryNonceStore creates a new in-memory nonce store
func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{
		nonces: make(map[string]nonceEntry),
		now:    time.Now,
	}
}

// Put stores nonce for address. The last writer wins.
func (s *MemoryNonceStore) Put(_ context.Context, address, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nonces[address] = nonceEntry{nonce: nonce, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns the live nonce for address
func (s *MemoryNonceStore) Get(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.nonces[address]
	if !ok {
		return "", core.ErrNonceNotFound
	}

	// Expired entries are dropped lazily
	if !s.now().Before(entry.expiresAt) {
		delete(s.nonces, address)
		return "", core.ErrNonceNotFound
	}

	return entry.nonce, nil
}

// Consume deletes the nonce for address if it matches. A mismatch leaves the stored nonce alone.
func (s *MemoryNonceStore) Consume(_ context.Context, address, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.nonces[address]
	if !ok || !s.now().Before(entry.expiresAt) {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(entry.nonce), []byte(nonce)) != 1 {
		return false, nil
	}

	delete(s.nonces, address)
	return true, nil
}

// Sweep drops every expired nonce and reports how many were removed
func (s *MemoryNonceStore) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for address, entry := range s.nonces {
		if !now.Before(entry.expiresAt) {
			delete(s.nonces, address)
			removed++
		}
	}
	return removed
}
