package service

import (
	"context"
	"errors"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// Guard resolves bearer tokens to principals and enforces role allowlists
type Guard struct {
	tokenizer  ports.Tokenizer
	identities *Identities
}

func NewGuard(tokenizer ports.Tokenizer, identities *Identities) *Guard {
	return &Guard{tokenizer: tokenizer, identities: identities}
}

// Resolve validates token and loads its principal. A valid token for an inactive principal
// is rejected with core.ErrAccountInactive.
func (g *Guard) Resolve(ctx context.Context, token string) (core.Principal, error) {
	if token == "" {
		return core.Principal{}, core.ErrMissingToken
	}

	principalID, err := g.tokenizer.Validate(token)
	if err != nil {
		return core.Principal{}, err
	}

	principal, err := g.identities.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, core.ErrPrincipalNotFound) {
			return core.Principal{}, core.ErrAccountNotFound
		}
		return core.Principal{}, err
	}

	if !principal.IsActive() {
		return core.Principal{}, core.ErrAccountInactive
	}

	return principal, nil
}

// RequireRole fails with core.ErrRoleNotPermitted unless principal holds one of roles
func (g *Guard) RequireRole(principal core.Principal, roles ...core.Role) error {
	return RequireRole(principal, roles...)
}

// RequireRole fails with core.ErrRoleNotPermitted unless principal holds one of roles
func RequireRole(principal core.Principal, roles ...core.Role) error {
	for _, role := range roles {
		if principal.Role == role {
			return nil
		}
	}
	return core.ErrRoleNotPermitted
}
