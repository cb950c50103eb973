package cache

import (
	"testing"
	"time"
)

func newMemory(t *testing.T, size int, ttl time.Duration, onEvict EvictCallback) Cache {
	t.Helper()
	c, err := New("memory", BackendConfig{Size: size, TTL: ttl, OnEvict: onEvict})
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_GetSet(t *testing.T) {
	c := newMemory(t, 10, time.Hour, nil)

	if val, ok := c.Get("tioanime:search:naruto"); ok || val != nil {
		t.Fatalf("Expected miss, got %q, %v", val, ok)
	}

	c.Set("tioanime:search:naruto", []byte(`[{"title":"Naruto"}]`))
	val, ok := c.Get("tioanime:search:naruto")
	if !ok || string(val) != `[{"title":"Naruto"}]` {
		t.Fatalf("Expected hit with stored value, got %q, %v", val, ok)
	}
	if !c.Contains("tioanime:search:naruto") || c.Contains("tioanime:search:bleach") {
		t.Error("Contains reported the wrong keys")
	}
}

func TestMemoryCache_OverwriteKeepsOneEntry(t *testing.T) {
	c := newMemory(t, 10, time.Hour, nil)

	c.Set("k", []byte("v1"))
	c.Set("k", []byte("v2"))

	if val, _ := c.Get("k"); string(val) != "v2" {
		t.Fatalf("Expected v2, got %s", val)
	}
	if c.Len() != 1 {
		t.Fatalf("Expected Len 1 after overwrite, got %d", c.Len())
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := newMemory(t, 2, time.Hour, func(key string, _ []byte) {
		evicted = append(evicted, key)
	})

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	_, _ = c.Get("a") // a becomes the most recent
	c.Set("c", []byte("3"))

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("Expected b to be evicted, got %v", evicted)
	}
	if !c.Contains("a") || !c.Contains("c") {
		t.Fatal("Keys a and c should still be present")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := newMemory(t, 10, 20*time.Millisecond, nil)

	c.Set("short", []byte("lived"))
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Fatal("Expected entry to expire after the TTL")
	}
}

func TestMemoryCache_RejectsZeroSize(t *testing.T) {
	if _, err := New("memory", BackendConfig{TTL: time.Hour}); err == nil {
		t.Fatal("Expected error for a zero-size memory cache")
	}
}
