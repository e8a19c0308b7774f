package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// Identities is the identity store. It canonicalizes addresses and hashes secrets before
// anything reaches the underlying PrincipalStore.
type Identities struct {
	store  ports.PrincipalStore
	hasher ports.SecretHasher
	now    func() time.Time
}

// NewIdentities creates the identity store
func NewIdentities(store ports.PrincipalStore, hasher ports.SecretHasher) *Identities {
	return &Identities{
		store:  store,
		hasher: hasher,
		now:    time.Now,
	}
}

// Create persists a new active principal. The raw secret is only used to compute the hash.
func (i *Identities) Create(ctx context.Context, address, username, secret string, role core.Role) (core.Principal, error) {
	address, err := canonicalHexAddress(address)
	if err != nil {
		return core.Principal{}, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return core.Principal{}, core.ErrMissingUsername
	}
	if !role.Valid() {
		return core.Principal{}, core.ErrInvalidRole
	}
	if secret == "" {
		return core.Principal{}, core.ErrMissingSecret
	}

	hash, err := i.hasher.Hash(secret)
	if err != nil {
		return core.Principal{}, fmt.Errorf("failed to hash secret: %w", err)
	}

	now := i.now().UTC()
	principal := core.Principal{
		ID:         uuid.NewString(),
		Address:    address,
		Username:   username,
		Role:       role,
		Status:     core.StatusActive,
		SecretHash: hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := i.store.Insert(ctx, principal); err != nil {
		return core.Principal{}, err
	}

	principal.SecretHash = ""
	return principal, nil
}

// FindByAddress looks a principal up by address in any casing
func (i *Identities) FindByAddress(ctx context.Context, address string, includeSecretHash bool) (core.Principal, error) {
	return i.store.GetByAddress(ctx, core.CanonicalAddress(address), includeSecretHash)
}

// FindByID looks a principal up by ID
func (i *Identities) FindByID(ctx context.Context, id string) (core.Principal, error) {
	if id == "" {
		return core.Principal{}, core.ErrPrincipalNotFound
	}
	return i.store.GetByID(ctx, id)
}

// UpdateFields changes only the fields set in update
func (i *Identities) UpdateFields(ctx context.Context, id string, update core.PrincipalUpdate) (core.Principal, error) {
	if update.Empty() {
		return core.Principal{}, core.ErrEmptyUpdate
	}
	if update.Username != nil {
		name := strings.TrimSpace(*update.Username)
		if name == "" {
			return core.Principal{}, core.ErrMissingUsername
		}
		update.Username = &name
	}
	if update.Role != nil && !update.Role.Valid() {
		return core.Principal{}, core.ErrInvalidRole
	}
	if update.Status != nil && !update.Status.Valid() {
		return core.Principal{}, core.ErrInvalidStatus
	}

	return i.store.Update(ctx, id, update)
}

// VerifySecret reports whether secret matches a stored hash
func (i *Identities) VerifySecret(secret, hash string) bool {
	if hash == "" {
		return false
	}
	return i.hasher.Verify(secret, hash)
}

// SetStatus activates or deactivates a principal
func (i *Identities) SetStatus(ctx context.Context, id string, status core.Status) (core.Principal, error) {
	return i.UpdateFields(ctx, id, core.PrincipalUpdate{Status: &status})
}

// List returns every principal without secret hashes
func (i *Identities) List(ctx context.Context) ([]core.Principal, error) {
	return i.store.List(ctx)
}

// Delete hard deletes a principal
func (i *Identities) Delete(ctx context.Context, id string) error {
	return i.store.Delete(ctx, id)
}

func canonicalHexAddress(address string) (string, error) {
	address = core.CanonicalAddress(address)
	if !common.IsHexAddress(address) || !strings.HasPrefix(address, "0x") {
		return "", core.ErrInvalidAddress
	}
	return address, nil
}
