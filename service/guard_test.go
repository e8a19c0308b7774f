package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

func TestGuardResolve(t *testing.T) {
	f := newFixture(t, AuthOptions{})
	ctx := context.Background()
	reg := f.register(t, "alice", core.RoleTeamLead)

	p, err := f.guard.Resolve(ctx, reg.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Principal.ID, p.ID)
	assert.Empty(t, p.SecretHash)

	_, err = f.guard.Resolve(ctx, "")
	assert.ErrorIs(t, err, core.ErrMissingToken)

	_, err = f.guard.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	// a token for a deleted principal no longer resolves
	require.NoError(t, f.identities.Delete(ctx, reg.Principal.ID))
	_, err = f.guard.Resolve(ctx, reg.Session.Token)
	assert.ErrorIs(t, err, core.ErrAccountNotFound)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestRequireRole(t *testing.T) {
	employee := core.Principal{Role: core.RoleEmployee}
	admin := core.Principal{Role: core.RoleAdmin}
	lead := core.Principal{Role: core.RoleTeamLead}

	err := RequireRole(employee, core.RoleAdmin, core.RoleTeamLead)
	assert.ErrorIs(t, err, core.ErrRoleNotPermitted)
	assert.ErrorIs(t, err, core.ErrForbidden)

	assert.NoError(t, RequireRole(admin, core.RoleAdmin, core.RoleTeamLead))
	assert.NoError(t, RequireRole(lead, core.RoleAdmin, core.RoleTeamLead))
	assert.ErrorIs(t, RequireRole(admin), core.ErrRoleNotPermitted)

	g := &Guard{}
	assert.ErrorIs(t, g.RequireRole(lead, core.RoleAdmin), core.ErrRoleNotPermitted)
}
