package ports

import (
	"context"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

// SecretHasher is a one-way, salted transform of the credential secret
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

// SignatureVerifier recovers wallet addresses from signed messages
type SignatureVerifier interface {
	RecoverSigner(message, signature string) (string, error)
	Verify(address, message, signature string) bool
}

// KeyProvider generates new wallets
type KeyProvider interface {
	NewKeypair(ctx context.Context) (core.Keypair, error)
}

// AddressDeriver maps a secret to the address it controls
type AddressDeriver interface {
	DeriveAddress(secret string) (string, error)
}
