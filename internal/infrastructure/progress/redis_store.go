package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

const redisKeyPrefix = "household-import:progress"

// RedisStore shares snapshots between API instances. Entries expire after ttl
// so abandoned runs do not linger forever.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: redisKeyPrefix, ttl: ttl}
}

func (s *RedisStore) key(userID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, userID)
}

func (s *RedisStore) Put(ctx context.Context, userID string, p domain.ImportProgress) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*domain.ImportProgress, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, fmt.Errorf("redis get progress: %w", err)
	}

	var p domain.ImportProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &p, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete progress: %w", err)
	}
	return nil
}
