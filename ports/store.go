package ports

import (
	"context"
	"time"

	"github.com/vu-thanh-do/blockchain-todu/core"
)

// PrincipalStore persists principals. Implementations must enforce address uniqueness and
// return core.ErrDuplicateIdentity on collision and core.ErrPrincipalNotFound on misses.
type PrincipalStore interface {
	Insert(ctx context.Context, principal core.Principal) error
	GetByAddress(ctx context.Context, address string, withSecret bool) (core.Principal, error)
	GetByID(ctx context.Context, id string) (core.Principal, error)
	List(ctx context.Context) ([]core.Principal, error)
	Update(ctx context.Context, id string, update core.PrincipalUpdate) (core.Principal, error)
	Delete(ctx context.Context, id string) error
}

// NonceStore keeps at most one live nonce per address
type NonceStore interface {
	// Put stores the nonce for address, replacing any previous one
	Put(ctx context.Context, address, nonce string, ttl time.Duration) error

	// Get returns the live nonce for address or core.ErrNonceNotFound
	Get(ctx context.Context, address string) (string, error)

	// Consume deletes the nonce only if it equals the presented one
	Consume(ctx context.Context, address, nonce string) (bool, error)
}

// TransactionLog is the append-only audit table of auth activity and client-reported
// transactions. Listings are newest first and return the total match count.
type TransactionLog interface {
	// Record stores tx, ignoring a hash that is already present
	Record(ctx context.Context, tx core.Transaction) error

	// Save stores tx or fails with core.ErrDuplicateTransaction
	Save(ctx context.Context, tx core.Transaction) error

	// GetByHash returns the entry with hash or core.ErrTransactionNotFound
	GetByHash(ctx context.Context, hash string) (core.Transaction, error)

	List(ctx context.Context, filter core.TransactionFilter, page core.Page) ([]core.Transaction, int, error)
}
