//go:build integration

package session

import (
	"context"
	"os"
	"testing"
	"time"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("TEAMTREE_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEAMTREE_REDIS_ADDR not set")
	}
	store, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr, Prefix: "teamtree-test:"})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStoreCredential(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	cred, _ := New("tok", "https://api.example.com", "dave", time.Minute)
	if err := store.Set(ctx, cred); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, cred.ID)
	if err != nil || got == nil || got.Token != "tok" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if err := store.Delete(ctx, cred.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, cred.ID); got != nil {
		t.Error("credential present after Delete")
	}
}

func TestRedisStoreCaptcha(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	c, err := store.Issue(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if ok, err := store.Verify(ctx, c.ID, c.Code); err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
	if ok, _ := store.Verify(ctx, c.ID, c.Code); ok {
		t.Error("captcha accepted twice")
	}
}
