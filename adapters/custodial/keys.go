package custodial

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

var (
	_ ports.KeyProvider = (*RemoteKeyProvider)(nil)
	_ ports.KeyProvider = (*FallbackKeyProvider)(nil)
)

// RemoteKeyProvider creates wallets through the custodial service. A wallet is only accepted
// when its secret derives to the address the service reported, so secret login keeps working.
type RemoteKeyProvider struct {
	client  *Client
	deriver ports.AddressDeriver
}

func NewRemoteKeyProvider(client *Client, deriver ports.AddressDeriver) *RemoteKeyProvider {
	return &RemoteKeyProvider{client: client, deriver: deriver}
}

func (p *RemoteKeyProvider) NewKeypair(ctx context.Context) (core.Keypair, error) {
	kp, err := p.client.CreateWallet(ctx)
	if err != nil {
		return core.Keypair{}, err
	}

	derived, err := p.deriver.DeriveAddress(kp.Secret)
	if err != nil {
		return core.Keypair{}, fmt.Errorf("%w: returned key is unusable", core.ErrCustodialFailed)
	}
	if derived != core.CanonicalAddress(kp.Address) {
		return core.Keypair{}, fmt.Errorf("%w: returned key does not control the returned address", core.ErrCustodialFailed)
	}

	kp.Address = derived
	return kp, nil
}

// FallbackKeyProvider tries primary and, on failure, generates the wallet with fallback
type FallbackKeyProvider struct {
	primary  ports.KeyProvider
	fallback ports.KeyProvider
	log      zerolog.Logger
}

func NewFallbackKeyProvider(primary, fallback ports.KeyProvider, log zerolog.Logger) *FallbackKeyProvider {
	return &FallbackKeyProvider{primary: primary, fallback: fallback, log: log}
}

func (p *FallbackKeyProvider) NewKeypair(ctx context.Context) (core.Keypair, error) {
	kp, err := p.primary.NewKeypair(ctx)
	if err == nil {
		return kp, nil
	}

	p.log.Warn().Err(err).Msg("custodial wallet creation failed, generating locally")
	return p.fallback.NewKeypair(ctx)
}
