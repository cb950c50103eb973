package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// The Redis tests need a reachable server: set REDIS_ADDRESS (e.g. "localhost:6379").

const redisTestDB = 15

func newTestRedisCache(t *testing.T, ttl time.Duration) Cache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}

	admin := redis.NewClient(&redis.Options{Addr: addr, DB: redisTestDB})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := admin.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush Redis test DB: %v", err)
	}
	_ = admin.Close()

	c, err := New("redis", BackendConfig{TTL: ttl, RedisAddress: addr, RedisDB: redisTestDB})
	if err != nil {
		t.Fatalf("New redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_GetSet(t *testing.T) {
	c := newTestRedisCache(t, 10*time.Second)

	if _, ok := c.Get("animefenix:home"); ok {
		t.Fatal("Expected miss for new key")
	}
	c.Set("animefenix:home", []byte("shelves"))

	val, ok := c.Get("animefenix:home")
	if !ok || string(val) != "shelves" {
		t.Fatalf("Expected hit, got %q, %v", val, ok)
	}
	if !c.Contains("animefenix:home") {
		t.Error("Expected Contains to report the key")
	}
	if c.Len() != 1 {
		t.Errorf("Expected Len 1, got %d", c.Len())
	}
}

func TestRedisCache_Expiry(t *testing.T) {
	c := newTestRedisCache(t, 200*time.Millisecond)

	c.Set("short", []byte("lived"))
	time.Sleep(400 * time.Millisecond)

	if c.Contains("short") {
		t.Fatal("Expected the key to expire server-side")
	}
}

func TestRedisCache_Unreachable(t *testing.T) {
	_, err := New("redis", BackendConfig{RedisAddress: "127.0.0.1:1", TTL: time.Second})
	if err == nil {
		t.Fatal("Expected ping failure for an unreachable server")
	}
}
