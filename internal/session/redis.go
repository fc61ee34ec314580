package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the owner token and the checkout draft per session id.
// Keys expire with the session TTL; the TTL is refreshed on every write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) port.SessionStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Owner(ctx context.Context, sessionID string) (string, error) {
	owner, err := s.client.Get(ctx, ownerKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	return owner, nil
}

func (s *RedisStore) SetOwner(ctx context.Context, sessionID, ownerID string) error {
	if err := s.client.Set(ctx, ownerKey(sessionID), ownerID, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (s *RedisStore) Draft(ctx context.Context, sessionID string) (*domain.OrderDraft, error) {
	data, err := s.client.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var draft domain.OrderDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft failed: %w", err)
	}

	return &draft, nil
}

func (s *RedisStore) SetDraft(ctx context.Context, sessionID string, draft domain.OrderDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft failed: %w", err)
	}

	if err := s.client.Set(ctx, draftKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (s *RedisStore) ClearDraft(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func ownerKey(sessionID string) string {
	return fmt.Sprintf("session:%s:owner", sessionID)
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("session:%s:draft", sessionID)
}
