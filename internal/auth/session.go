package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/loan-service/internal/domain"
)

// SessionChecker answers whether a token's session is still live.
type SessionChecker interface {
	IsActive(ctx context.Context, tokenID string) (bool, error)
}

// SessionStore manages session markers for issued tokens.
type SessionStore interface {
	SessionChecker
	Register(ctx context.Context, token domain.IssuedToken) error
	Revoke(ctx context.Context, tokenID string) error
}

// RedisSessionStore keeps one key per token, session:{jti} -> user id, with a fixed TTL.
type RedisSessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisSessionStore builds a store over client.
func NewRedisSessionStore(client redis.Cmdable, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Register(ctx context.Context, token domain.IssuedToken) error {
	key := domain.SessionKey(token.TokenID)
	if err := s.client.Set(ctx, key, strconv.FormatInt(token.UserID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) IsActive(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, domain.SessionKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n == 1, nil
}

// Revoke deletes the marker. Deleting an absent key is not an error.
func (s *RedisSessionStore) Revoke(ctx context.Context, tokenID string) error {
	if err := s.client.Del(ctx, domain.SessionKey(tokenID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
