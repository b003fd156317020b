//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if err := c.Set(ctx, "it:key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "it:key")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "it:key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "it:key"); hit {
		t.Error("entry present after Delete")
	}

	c.Set(ctx, "it:a", []byte("a"), time.Minute)
	if cl, ok := c.(Clearer); ok {
		if err := cl.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "it:a"); hit {
			t.Error("entry present after Clear")
		}
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEAMTREE_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEAMTREE_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), addr, "", 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("TEAMTREE_MONGO_URI")
	if uri == "" {
		t.Skip("TEAMTREE_MONGO_URI not set")
	}
	c, err := NewMongoCache(context.Background(), uri, "teamtree_test", "cache")
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	defer c.Close()
	exerciseCache(t, c)
}
