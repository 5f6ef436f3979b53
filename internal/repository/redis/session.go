package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/cipr/storefront/pkg/errors"
)

const keyPrefix = "session:token:"

// SessionStore implements repository.SessionStore using Redis.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a new Redis-backed session store.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

// SaveToken persists a bearer token with the configured TTL.
func (s *SessionStore) SaveToken(ctx context.Context, sessionID, token string) error {
	if err := s.client.Set(ctx, keyPrefix+sessionID, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// LoadToken retrieves a previously persisted token.
func (s *SessionStore) LoadToken(ctx context.Context, sessionID string) (string, error) {
	token, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.NotFound("session token", sessionID)
		}
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return token, nil
}

// DeleteToken removes a persisted token. Deleting an absent token is not
// an error.
func (s *SessionStore) DeleteToken(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}
