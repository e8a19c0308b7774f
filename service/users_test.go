package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

func TestUserServiceCreate(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	admin := f.register(t, "root", core.RoleAdmin).Principal

	created, err := f.users.Create(ctx, admin, RegisterInput{Username: "bob", Role: "teamLead"})
	require.NoError(t, err)
	assert.Equal(t, core.RoleTeamLead, created.Principal.Role)
	assert.Regexp(t, secretPattern, created.Secret)

	// the revealed secret logs in
	res, err := f.auth.Login(ctx, created.Secret)
	require.NoError(t, err)
	assert.Equal(t, created.Principal.ID, res.Principal.ID)

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	assert.Equal(t, admin.ID, f.events.events[1].ActorID)
}

func TestUserServiceUpdate(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	admin := f.register(t, "root", core.RoleAdmin).Principal
	bob := f.register(t, "bob", core.RoleEmployee).Principal

	name := "robert"
	updated, err := f.users.Update(ctx, admin, bob.ID, core.PrincipalUpdate{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "robert", updated.Username)
	assert.Equal(t, core.RoleEmployee, updated.Role)

	_, err = f.users.Update(ctx, admin, bob.ID, core.PrincipalUpdate{})
	assert.ErrorIs(t, err, core.ErrEmptyUpdate)

	bad := core.Role("owner")
	_, err = f.users.Update(ctx, admin, bob.ID, core.PrincipalUpdate{Role: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidRole)

	_, err = f.users.Update(ctx, admin, "missing", core.PrincipalUpdate{Username: &name})
	assert.ErrorIs(t, err, core.ErrPrincipalNotFound)
}

func TestUserServiceSetStatus(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	admin := f.register(t, "root", core.RoleAdmin).Principal
	other := f.register(t, "other-admin", core.RoleAdmin).Principal
	bob := f.register(t, "bob", core.RoleEmployee)

	p, err := f.users.SetStatus(ctx, admin, bob.Principal.ID, core.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, core.StatusInactive, p.Status)

	_, err = f.auth.Login(ctx, bob.Secret)
	assert.ErrorIs(t, err, core.ErrAccountInactive)

	_, err = f.users.SetStatus(ctx, admin, other.ID, core.StatusInactive)
	assert.ErrorIs(t, err, core.ErrAdminStatusLocked)
	assert.ErrorIs(t, err, core.ErrForbidden)

	inactive := core.StatusInactive
	_, err = f.users.Update(ctx, admin, other.ID, core.PrincipalUpdate{Status: &inactive})
	assert.ErrorIs(t, err, core.ErrAdminStatusLocked)

	_, err = f.users.SetStatus(ctx, admin, bob.Principal.ID, core.Status("banned"))
	assert.ErrorIs(t, err, core.ErrInvalidStatus)

	_, err = f.users.SetStatus(ctx, admin, "missing", core.StatusActive)
	assert.ErrorIs(t, err, core.ErrPrincipalNotFound)

	assert.Contains(t, f.events.types(), core.EventStatusChanged)
}

func TestUserServiceDelete(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	admin := f.register(t, "root", core.RoleAdmin).Principal
	bob := f.register(t, "bob", core.RoleEmployee)

	require.NoError(t, f.users.Delete(ctx, admin, bob.Principal.ID))

	_, err := f.users.Get(ctx, bob.Principal.ID)
	assert.ErrorIs(t, err, core.ErrPrincipalNotFound)
	_, err = f.auth.Login(ctx, bob.Secret)
	assert.ErrorIs(t, err, core.ErrAccountNotFound)

	assert.ErrorIs(t, f.users.Delete(ctx, admin, bob.Principal.ID), core.ErrPrincipalNotFound)
	assert.Contains(t, f.events.types(), core.EventPrincipalDeleted)
}
