package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

var _ ports.PrincipalStore = (*MemoryPrincipalStore)(nil)

// MemoryPrincipalStore is an in-memory implementation of the PrincipalStore interface
type MemoryPrincipalStore struct {
	byID      map[string]core.Principal
	byAddress map[string]string
	mu        sync.RWMutex
}

// NewMemoryPrincipalStore creates a new in-memory principal store
func NewMemoryPrincipalStore() *MemoryPrincipalStore {
	return &MemoryPrincipalStore{
		byID:      make(map[string]core.Principal),
		byAddress: make(map[string]string),
	}
}

// Insert adds a principal. The first writer of an address wins.
func (s *MemoryPrincipalStore) Insert(_ context.Context, principal core.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAddress[principal.Address]; exists {
		return core.ErrDuplicateIdentity
	}
	if _, exists := s.byID[principal.ID]; exists {
		return core.ErrDuplicateIdentity
	}

	s.byID[principal.ID] = principal
	s.byAddress[principal.Address] = principal.ID
	return nil
}

// GetByAddress looks a principal up by canonical address
func (s *MemoryPrincipalStore) GetByAddress(_ context.Context, address string, withSecret bool) (core.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byAddress[address]
	if !ok {
		return core.Principal{}, core.ErrPrincipalNotFound
	}

	p := s.byID[id]
	if !withSecret {
		p.SecretHash = ""
	}
	return p, nil
}

// GetByID looks a principal up by ID. The secret hash is never returned.
func (s *MemoryPrincipalStore) GetByID(_ context.Context, id string) (core.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return core.Principal{}, core.ErrPrincipalNotFound
	}

	p.SecretHash = ""
	return p, nil
}

// List returns all principals, newest first
func (s *MemoryPrincipalStore) List(_ context.Context) ([]core.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Principal, 0, len(s.byID))
	for _, p := range s.byID {
		p.SecretHash = ""
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update applies the non-nil fields of update and returns the stored principal
func (s *MemoryPrincipalStore) Update(_ context.Context, id string, update core.PrincipalUpdate) (core.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return core.Principal{}, core.ErrPrincipalNotFound
	}

	if update.Username != nil {
		p.Username = *update.Username
	}
	if update.Role != nil {
		p.Role = *update.Role
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	p.UpdatedAt = time.Now().UTC()

	s.byID[id] = p

	p.SecretHash = ""
	return p, nil
}

// Delete removes a principal
func (s *MemoryPrincipalStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return core.ErrPrincipalNotFound
	}

	delete(s.byID, id)
	delete(s.byAddress, p.Address)
	return nil
}
