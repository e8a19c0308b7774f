package ethereum

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

// Verifier checks personal_sign (EIP-191) signatures
type Verifier struct{}

// NewVerifier creates a signature verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// RecoverSigner returns the canonical address that produced signature over message
func (Verifier) RecoverSigner(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", core.ErrMalformedSignature)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes: %w", crypto.SignatureLength, core.ErrMalformedSignature)
	}

	// Wallets emit v as 27/28, go-ethereum expects 0/1
	sig = append([]byte(nil), sig...)
	switch sig[crypto.RecoveryIDOffset] {
	case 27, 28:
		sig[crypto.RecoveryIDOffset] -= 27
	case 0, 1:
	default:
		return "", fmt.Errorf("invalid recovery id: %w", core.ErrMalformedSignature)
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", core.ErrMalformedSignature)
	}

	return core.CanonicalAddress(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// Verify reports whether address signed message
func (v Verifier) Verify(address, message, signature string) bool {
	if !common.IsHexAddress(address) {
		return false
	}
	signer, err := v.RecoverSigner(message, signature)
	if err != nil {
		return false
	}
	return signer == core.CanonicalAddress(address)
}
