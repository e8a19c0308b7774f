package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// AuthOptions toggles optional login modes
type AuthOptions struct {
	// TrustedAddressLogin enables login by bare address. It proves nothing about the caller.
	TrustedAddressLogin bool
}

// AuthService handles authentication business logic
type AuthService struct {
	identities *Identities
	challenges *Challenges
	tokenizer  ports.Tokenizer
	keys       ports.KeyProvider
	deriver    ports.AddressDeriver
	verifier   ports.SignatureVerifier
	eventPub   ports.EventPublisher
	log        zerolog.Logger

	trustedAddressLogin bool
	now                 func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	identities *Identities,
	challenges *Challenges,
	tokenizer ports.Tokenizer,
	keys ports.KeyProvider,
	deriver ports.AddressDeriver,
	verifier ports.SignatureVerifier,
	eventPub ports.EventPublisher,
	log zerolog.Logger,
	opts AuthOptions,
) *AuthService {
	return &AuthService{
		identities:          identities,
		challenges:          challenges,
		tokenizer:           tokenizer,
		keys:                keys,
		deriver:             deriver,
		verifier:            verifier,
		eventPub:            eventPub,
		log:                 log.With().Str("component", "auth").Logger(),
		trustedAddressLogin: opts.TrustedAddressLogin,
		now:                 time.Now,
	}
}

// RegisterInput is what a caller supplies to register
type RegisterInput struct {
	Username string
	Role     string
}

// Registration is the one and only place the raw secret is ever returned
type Registration struct {
	Principal core.Principal
	Secret    string
	Session   core.Session
}

// LoginResult is returned by every login variant
type LoginResult struct {
	Principal core.Principal
	Session   core.Session
}

// Register creates a wallet and a principal bound to it and issues a session
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	principal, secret, err := s.provision(ctx, in)
	if err != nil {
		return Registration{}, err
	}

	session, err := s.tokenizer.Issue(principal.ID)
	if err != nil {
		return Registration{}, fmt.Errorf("failed to issue session: %w", err)
	}

	s.publish(ctx, core.EventRegistered, principal, "", "")

	return Registration{
		Principal: principal,
		Secret:    secret,
		Session:   session,
	}, nil
}

// provision generates a keypair and stores the principal. Shared by self registration and
// admin user creation.
func (s *AuthService) provision(ctx context.Context, in RegisterInput) (core.Principal, string, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return core.Principal{}, "", core.ErrMissingUsername
	}

	role, err := core.ParseRole(in.Role)
	if err != nil {
		return core.Principal{}, "", err
	}

	keypair, err := s.keys.NewKeypair(ctx)
	if err != nil {
		return core.Principal{}, "", fmt.Errorf("failed to create wallet: %w", err)
	}

	principal, err := s.identities.Create(ctx, keypair.Address, username, keypair.Secret, role)
	if err != nil {
		return core.Principal{}, "", err
	}

	return principal, keypair.Secret, nil
}

// Login authenticates with the wallet secret
func (s *AuthService) Login(ctx context.Context, secret string) (LoginResult, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return LoginResult{}, core.ErrMissingSecret
	}

	// The secret determines the address, no lookup needed
	address, err := s.deriver.DeriveAddress(secret)
	if err != nil {
		return LoginResult{}, err
	}

	principal, err := s.identities.FindByAddress(ctx, address, true)
	if err != nil {
		if errors.Is(err, core.ErrPrincipalNotFound) {
			return LoginResult{}, core.ErrAccountNotFound
		}
		return LoginResult{}, err
	}

	if !s.identities.VerifySecret(secret, principal.SecretHash) {
		return LoginResult{}, core.ErrSecretMismatch
	}
	principal.SecretHash = ""

	return s.completeLogin(ctx, principal, core.EventSecretLogin, "")
}

// RequestNonce issues a signature challenge for address. The principal is not looked up.
func (s *AuthService) RequestNonce(ctx context.Context, address string) (core.Challenge, error) {
	nonce, err := s.challenges.IssueNonce(ctx, address)
	if err != nil {
		return core.Challenge{}, err
	}

	canonical := core.CanonicalAddress(address)
	return core.Challenge{
		Address:   canonical,
		Nonce:     nonce,
		Message:   LoginMessage(canonical, nonce),
		ExpiresAt: s.now().Add(s.challenges.TTL()),
	}, nil
}

// VerifyAndLogin authenticates with a wallet signature over a message embedding the live nonce
func (s *AuthService) VerifyAndLogin(ctx context.Context, address, message, signature string) (LoginResult, error) {
	address, err := canonicalHexAddress(address)
	if err != nil {
		return LoginResult{}, err
	}

	signer, err := s.verifier.RecoverSigner(message, signature)
	if err != nil {
		return LoginResult{}, err
	}
	if signer != address {
		return LoginResult{}, core.ErrInvalidSignature
	}

	// The signed message must carry the nonce we handed out, and that nonce must still be live
	nonce, err := s.challenges.Current(ctx, address)
	if err != nil {
		if errors.Is(err, core.ErrNonceNotFound) {
			return LoginResult{}, core.ErrNonceMismatch
		}
		return LoginResult{}, err
	}
	if !strings.Contains(message, nonce) {
		return LoginResult{}, core.ErrNonceMismatch
	}

	consumed, err := s.challenges.Consume(ctx, address, nonce)
	if err != nil {
		return LoginResult{}, err
	}
	if !consumed {
		// Lost a race with a concurrent login or a fresh nonce request
		return LoginResult{}, core.ErrNonceMismatch
	}

	principal, err := s.identities.FindByAddress(ctx, address, false)
	if err != nil {
		if errors.Is(err, core.ErrPrincipalNotFound) {
			return LoginResult{}, core.ErrAccountNotFound
		}
		return LoginResult{}, err
	}

	return s.completeLogin(ctx, principal, core.EventSignatureLogin, signature)
}

// TrustedAddressLogin issues a session for a bare address without any proof of ownership.
// It is refused unless explicitly enabled. A supplied signature is recorded but not checked.
func (s *AuthService) TrustedAddressLogin(ctx context.Context, address, signature string) (LoginResult, error) {
	if !s.trustedAddressLogin {
		return LoginResult{}, core.ErrTrustedLoginDisabled
	}

	address, err := canonicalHexAddress(address)
	if err != nil {
		return LoginResult{}, err
	}

	principal, err := s.identities.FindByAddress(ctx, address, false)
	if err != nil {
		if errors.Is(err, core.ErrPrincipalNotFound) {
			return LoginResult{}, core.ErrAccountNotFound
		}
		return LoginResult{}, err
	}

	s.log.Warn().Str("address", address).Msg("address-only login")

	return s.completeLogin(ctx, principal, core.EventTrustedAddressLogin, signature)
}

func (s *AuthService) completeLogin(ctx context.Context, principal core.Principal, kind core.AuthEventType, signature string) (LoginResult, error) {
	if !principal.IsActive() {
		return LoginResult{}, core.ErrAccountInactive
	}

	session, err := s.tokenizer.Issue(principal.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue session: %w", err)
	}

	s.publish(ctx, kind, principal, "", signature)

	return LoginResult{Principal: principal, Session: session}, nil
}

// publish emits an auth event. Failures are logged, the operation itself already succeeded.
func (s *AuthService) publish(ctx context.Context, kind core.AuthEventType, principal core.Principal, actorID, signature string) {
	publishEvent(ctx, s.eventPub, s.log, core.AuthEvent{
		Type:        kind,
		PrincipalID: principal.ID,
		Address:     principal.Address,
		Username:    principal.Username,
		ActorID:     actorID,
		Signature:   signature,
		OccurredAt:  s.now().UTC(),
	})
}

func publishEvent(ctx context.Context, pub ports.EventPublisher, log zerolog.Logger, event core.AuthEvent) {
	if pub == nil {
		return
	}
	if err := pub.PublishAuthEvent(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", string(event.Type)).Msg("failed to publish auth event")
	}
}
