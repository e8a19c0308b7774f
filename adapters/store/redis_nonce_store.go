package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

var _ ports.NonceStore = (*RedisNonceStore)(nil)

// consumeScript deletes the key only when it still holds the presented nonce
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisNonceStore is a Redis implementation of the NonceStore interface.
// Expiry is left to Redis key TTLs.
type RedisNonceStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisNonceStore creates a new Redis nonce store
func NewRedisNonceStore(client redis.UniversalClient) *RedisNonceStore {
	return &RedisNonceStore{
		client: client,
		prefix: "tasktrail:nonce:",
	}
}

// Put stores nonce for address, replacing the previous one
func (s *RedisNonceStore) Put(ctx context.Context, address, nonce string, ttl time.Duration) error {
	key := s.prefix + address

	// Set key with expiration
	if err := s.client.Set(ctx, key, nonce, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}

	return nil
}

// Get returns the live nonce for address
func (s *RedisNonceStore) Get(ctx context.Context, address string) (string, error) {
	key := s.prefix + address

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrNonceNotFound
		}
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}

	return val, nil
}

// Consume atomically deletes the nonce for address if it matches
func (s *RedisNonceStore) Consume(ctx context.Context, address, nonce string) (bool, error) {
	key := s.prefix + address

	deleted, err := consumeScript.Run(ctx, s.client, []string{key}, nonce).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}

	return deleted > 0, nil
}
