package session

import (
	"context"
	"fmt"
	"time"

	"fdv-chatbot-platform/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewStore picks the backend named by cfg.SessionBackend. The memory store
// gets a janitor bound to ctx.
func NewStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (Store, error) {
	switch cfg.SessionBackend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis session backend requires a Redis connection")
		}
		return NewRedisStore(rdb, cfg.SessionTTL), nil
	default:
		s := NewMemoryStore(WithTTL(cfg.SessionTTL), WithMaxEntries(cfg.SessionMaxEntries))
		s.StartJanitor(ctx, time.Minute)
		return s, nil
	}
}
