package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/courses-service/internal/config"
	"github.com/example/courses-service/internal/domain"
)

// RedisListCache stores id lists as JSON strings with SET EX.
type RedisListCache struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewRedisListCache connects and pings the server.
func NewRedisListCache(cfg *config.RedisConfig, logger *zap.Logger) (*RedisListCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &RedisListCache{rdb: rdb, logger: logger}, nil
}

func (c *RedisListCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisListCache) Get(ctx context.Context, key string) ([]string, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode cached %q: %w", key, err)
	}
	return ids, nil
}

func (c *RedisListCache) Set(ctx context.Context, key string, ids []string, ttl time.Duration) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// TTL returns the remaining lifetime of key as reported by the server.
func (c *RedisListCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.TTL(ctx, key).Result()
}

func (c *RedisListCache) Close() error {
	return c.rdb.Close()
}

var _ domain.ListCache = (*RedisListCache)(nil)
