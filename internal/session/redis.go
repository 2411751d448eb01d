package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fdv-chatbot-platform/utils"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares sessions between API instances. Each session is one
// key holding a JSON list; Redis executes GET and SET atomically, and the
// TTL is refreshed on every write.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id + ":sources"
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) ([]string, error) {
	ctx, cancel := utils.WithShortTimeout(ctx)
	defer cancel()

	data, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	var sources []string
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	if sources == nil {
		sources = []string{}
	}
	return sources, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID string, sources []string) error {
	if sources == nil {
		sources = []string{}
	}
	data, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	ctx, cancel := utils.WithShortTimeout(ctx)
	defer cancel()
	if err := s.rdb.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session %s: %w", sessionID, err)
	}
	return nil
}
