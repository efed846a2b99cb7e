package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/walletauth/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of the Store interface
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client redis.UniversalClient) ports.Store {
	return &RedisStore{
		client: client,
		prefix: "walletauth:revoked:",
	}
}

// RevokeSession marks a session ID as revoked in Redis
func (s *RedisStore) RevokeSession(ctx context.Context, sessionID string, expiry time.Duration) error {
	if expiry <= 0 {
		return nil
	}

	key := s.prefix + sessionID

	// The key expires together with the cookie it revokes
	if err := s.client.Set(ctx, key, "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// IsSessionRevoked checks if a session ID is revoked in Redis
func (s *RedisStore) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	key := s.prefix + sessionID

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}

	return val > 0, nil
}
