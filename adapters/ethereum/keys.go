package ethereum

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

// LocalKeyProvider generates secp256k1 keypairs in process
type LocalKeyProvider struct{}

// NewLocalKeyProvider creates a key provider backed by crypto/rand
func NewLocalKeyProvider() *LocalKeyProvider {
	return &LocalKeyProvider{}
}

// NewKeypair generates a fresh wallet. The secret is the 0x-prefixed hex private key.
func (LocalKeyProvider) NewKeypair(_ context.Context) (core.Keypair, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return core.Keypair{}, fmt.Errorf("failed to generate key: %w", err)
	}

	return core.Keypair{
		Address: core.CanonicalAddress(crypto.PubkeyToAddress(key.PublicKey).Hex()),
		Secret:  hexutil.Encode(crypto.FromECDSA(key)),
	}, nil
}

// DeriveAddress returns the canonical address controlled by a hex private key.
// The 0x prefix is optional.
func (LocalKeyProvider) DeriveAddress(secret string) (string, error) {
	return DeriveAddress(secret)
}

// DeriveAddress returns the canonical address controlled by a hex private key
func DeriveAddress(secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", core.ErrMissingSecret
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(secret, "0x"), "0X"))
	if err != nil {
		return "", core.ErrInvalidSecret
	}

	return core.CanonicalAddress(crypto.PubkeyToAddress(key.PublicKey).Hex()), nil
}
