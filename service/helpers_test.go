package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vu-thanh-do/blockchain-todu/adapters/ethereum"
	"github.com/vu-thanh-do/blockchain-todu/adapters/hasher"
	"github.com/vu-thanh-do/blockchain-todu/adapters/store"
	"github.com/vu-thanh-do/blockchain-todu/adapters/tokenizer"
	"github.com/vu-thanh-do/blockchain-todu/core"
)

// recordingPublisher keeps published events in memory
type recordingPublisher struct {
	mu     sync.Mutex
	events []core.AuthEvent
}

func (r *recordingPublisher) PublishAuthEvent(_ context.Context, event core.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []core.AuthEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.AuthEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	auth       *AuthService
	users      *UserService
	guard      *Guard
	identities *Identities
	challenges *Challenges
	nonces     *store.MemoryNonceStore
	tokens     *tokenizer.JWTTokenizer
	events     *recordingPublisher
}

func newFixture(t *testing.T, opts AuthOptions) *fixture {
	t.Helper()

	key, err := tokenizer.GenerateSigningKey()
	require.NoError(t, err)

	tokens := tokenizer.NewJWTTokenizer(key, 0)
	nonces := store.NewMemoryNonceStore()
	identities := NewIdentities(store.NewMemoryPrincipalStore(), hasher.NewBcrypt(bcrypt.MinCost))
	challenges := NewChallenges(nonces, 0)
	keys := ethereum.NewLocalKeyProvider()
	events := &recordingPublisher{}

	auth := NewAuthService(identities, challenges, tokens, keys, keys, ethereum.NewVerifier(), events, zerolog.Nop(), opts)

	return &fixture{
		auth:       auth,
		users:      NewUserService(auth, identities, events, zerolog.Nop()),
		guard:      NewGuard(tokens, identities),
		identities: identities,
		challenges: challenges,
		nonces:     nonces,
		tokens:     tokens,
		events:     events,
	}
}

func (f *fixture) register(t *testing.T, username string, role core.Role) Registration {
	t.Helper()
	reg, err := f.auth.Register(context.Background(), RegisterInput{Username: username, Role: string(role)})
	require.NoError(t, err)
	return reg
}

// sign produces a personal_sign signature the way a browser wallet does
func sign(t *testing.T, secret, message string) string {
	t.Helper()
	key, err := crypto.HexToECDSA(strings.TrimPrefix(secret, "0x"))
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}
