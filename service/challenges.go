package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// DefaultNonceTTL is how long an issued nonce stays valid
const DefaultNonceTTL = 5 * time.Minute

// nonceBytes is the amount of randomness in a nonce, hex encoded to twice as many characters
const nonceBytes = 32

// LoginMessageVersion prefixes the message wallets are asked to sign
const LoginMessageVersion = "tasktrail-login:v1"

// LoginMessage is the message a wallet should sign to prove control of address. Any signed
// message embedding the nonce is accepted; this is the one clients are handed.
func LoginMessage(address, nonce string) string {
	return fmt.Sprintf("%s:%s:%s", LoginMessageVersion, address, nonce)
}

// Challenges issues and consumes single-use login nonces
type Challenges struct {
	store ports.NonceStore
	ttl   time.Duration
}

// NewChallenges creates the nonce challenge store. A non-positive ttl falls back to DefaultNonceTTL.
func NewChallenges(store ports.NonceStore, ttl time.Duration) *Challenges {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &Challenges{store: store, ttl: ttl}
}

// TTL is how long issued nonces live
func (c *Challenges) TTL() time.Duration {
	return c.ttl
}

// IssueNonce generates a fresh nonce for address, replacing any previous one
func (c *Challenges) IssueNonce(ctx context.Context, address string) (string, error) {
	address, err := canonicalHexAddress(address)
	if err != nil {
		return "", err
	}

	// Generate random nonce
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	if err := c.store.Put(ctx, address, nonce, c.ttl); err != nil {
		return "", err
	}

	return nonce, nil
}

// Current returns the live nonce for address or core.ErrNonceNotFound
func (c *Challenges) Current(ctx context.Context, address string) (string, error) {
	return c.store.Get(ctx, core.CanonicalAddress(address))
}

// Consume invalidates nonce if it is the live one for address. A mismatch changes nothing.
func (c *Challenges) Consume(ctx context.Context, address, nonce string) (bool, error) {
	if nonce == "" {
		return false, nil
	}
	return c.store.Consume(ctx, core.CanonicalAddress(address), nonce)
}
