// Package statestore provides the persistence collaborator: Redis for
// production, an in-memory store for tests and local development.
package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/airdesk-ai/airdesk/internal/domain/conversation"
	"github.com/airdesk-ai/airdesk/pkg/config"
)

const conversationKeyPrefix = "conv"

// RedisStore persists conversation state as JSON with a fixed TTL that is
// refreshed on every save. Expired conversations simply disappear; the
// dispatcher then starts a fresh one under the same id.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a Redis-backed conversation store.
func NewRedisStore(client *redis.Client, cfg config.RedisConfig) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
		prefix: cfg.Prefix,
	}
}

// NewRedisClient builds the shared Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Load retrieves conversation state by ID.
func (s *RedisStore) Load(ctx context.Context, id string) (*conversation.State, error) {
	if id == "" {
		return nil, conversation.ErrInvalidID
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, conversation.ErrNotFound
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var state conversation.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation state: %w", err)
	}
	return &state, nil
}

// Save persists conversation state and refreshes its expiry.
func (s *RedisStore) Save(ctx context.Context, id string, state *conversation.State) error {
	if id == "" {
		return conversation.ErrInvalidID
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation state: %w", err)
	}

	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes a conversation.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return conversation.ErrInvalidID
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, conversationKeyPrefix, id)
}
