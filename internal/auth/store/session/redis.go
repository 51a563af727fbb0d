package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"assettrack/internal/auth/models"
	"assettrack/pkg/platform/sentinel"
)

const keyPrefix = "session:"

// Redis persists sessions in Redis with a TTL matching the session expiry,
// so restarts don't log everyone out and expiry needs no sweeper.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed session store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Save stores the session, expiring it when the session does.
func (s *Redis) Save(ctx context.Context, sess *models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrInvalidState
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// FindByID returns the unexpired session with the given id. The now argument
// exists for interface parity with the memory store; Redis expiry is
// authoritative here.
func (s *Redis) FindByID(ctx context.Context, id string, _ time.Time) (*models.Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session.
func (s *Redis) Delete(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if deleted == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
