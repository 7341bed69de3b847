package cache

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/courses-service/internal/config"
	"github.com/example/courses-service/internal/domain"
)

func setupRedis(t *testing.T) *RedisListCache {
	addr := os.Getenv("COURSES_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COURSES_TEST_REDIS_ADDR not set")
	}
	c, err := NewRedisListCache(&config.RedisConfig{Addr: addr}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedisListCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisListCache_RoundTrip(t *testing.T) {
	c := setupRedis(t)
	ctx := context.Background()
	key := domain.CacheKey("redis-test-"+time.Now().Format("150405.000"), domain.ResourceClasses)

	if ok, err := c.Exists(ctx, key); err != nil || ok {
		t.Fatalf("Exists() = %v, %v before Set", ok, err)
	}
	if err := c.Set(ctx, key, []string{"c1", "c2"}, domain.ResourceTTL); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"c1", "c2"}) {
		t.Errorf("Get() = %v", got)
	}
	ttl, err := c.TTL(ctx, key)
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= domain.ResourceTTL-time.Minute || ttl > domain.ResourceTTL {
		t.Errorf("TTL() = %v, want about 5h", ttl)
	}
}
