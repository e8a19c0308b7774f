package core

import (
	"context"
	"time"
)

// Keypair is a freshly generated wallet. Secret is the hex-encoded private key and is only
// ever handed back to the caller once.
type Keypair struct {
	Address string
	Secret  string
}

// Session represents an issued bearer token
type Session struct {
	Token       string    // Signed bearer token
	PrincipalID string    // Subject of the token
	IssuedAt    time.Time // When the token was issued
	ExpiresAt   time.Time // When the token stops validating
}

// Challenge is a single-use nonce handed out for signature login
type Challenge struct {
	Address   string    // Canonical address the nonce is bound to
	Nonce     string    // Random hex nonce
	Message   string    // Suggested message for the wallet to sign
	ExpiresAt time.Time // When the nonce stops being accepted
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying the resolved principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by the authorization guard.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
