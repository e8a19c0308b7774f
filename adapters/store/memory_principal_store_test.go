package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

func newPrincipal(id, address string, created time.Time) core.Principal {
	return core.Principal{
		ID:         id,
		Address:    address,
		Username:   "user-" + id,
		Role:       core.RoleEmployee,
		Status:     core.StatusActive,
		SecretHash: "hash-" + id,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestMemoryPrincipalStoreLookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPrincipalStore()
	require.NoError(t, s.Insert(ctx, newPrincipal("1", "0xaa", time.Now())))

	withSecret, err := s.GetByAddress(ctx, "0xaa", true)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", withSecret.SecretHash)

	without, err := s.GetByAddress(ctx, "0xaa", false)
	require.NoError(t, err)
	assert.Empty(t, without.SecretHash)

	byID, err := s.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, byID.SecretHash)
	assert.Equal(t, "0xaa", byID.Address)

	_, err = s.GetByAddress(ctx, "0xbb", false)
	assert.ErrorIs(t, err, core.ErrPrincipalNotFound)
	_, err = s.GetByID(ctx, "2")
	assert.ErrorIs(t, err, core.ErrPrincipalNotFound)
}

func TestMemoryPrincipalStoreDuplicateAddress(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPrincipalStore()
	require.NoError(t, s.Insert(ctx, newPrincipal("1", "0xaa", time.Now())))

	err := s.Insert(ctx, newPrincipal("2", "0xaa", time.Now()))
	assert.ErrorIs(t, err, core.ErrDuplicateIdentity)
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestMemoryPrincipalStoreConcurrentInsertFirstWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPrincipalStore()

	const writers = 16
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			if err := s.Insert(ctx, newPrincipal(id, "0xaa", time.Now())); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryPrincipalStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPrincipalStore()
	require.NoError(t, s.Insert(ctx, newPrincipal("1", "0xaa", time.Now())))

	name := "renamed"
	status := core.StatusInactive
	updated, err := s.Update(ctx, "1", core.PrincipalUpdate{Username: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, core.StatusInactive, updated.Status)
	assert.Equal(t, core.RoleEmployee, updated.Role)
	assert.Empty(t, updated.SecretHash)

	// the stored hash survives a partial update
	stored, err := s.GetByAddress(ctx, "0xaa", true)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", stored.SecretHash)

	_, err = s.Update(ctx, "missing", core.PrincipalUpdate{Username: &name})
	assert.ErrorIs(t, err, core.ErrPrincipalNotFound)

	require.NoError(t, s.Delete(ctx, "1"))
	assert.ErrorIs(t, s.Delete(ctx, "1"), core.ErrPrincipalNotFound)

	// the address is free again after a hard delete
	require.NoError(t, s.Insert(ctx, newPrincipal("2", "0xaa", time.Now())))
}

func TestMemoryPrincipalStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryPrincipalStore()
	base := time.Now()
	require.NoError(t, s.Insert(ctx, newPrincipal("old", "0x01", base.Add(-time.Hour))))
	require.NoError(t, s.Insert(ctx, newPrincipal("new", "0x02", base)))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "old", all[1].ID)
	for _, p := range all {
		assert.Empty(t, p.SecretHash)
	}
}
