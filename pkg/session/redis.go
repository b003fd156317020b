package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps credentials and captchas in Redis. Entries expire through
// Redis TTLs, so Cleanup is a no-op.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "teamtree:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) credentialKey(id string) string { return s.prefix + "session:" + id }
func (s *RedisStore) captchaKey(id string) string    { return s.prefix + "captcha:" + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Credential, error) {
	data, err := s.client.Get(ctx, s.credentialKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if cred.IsExpired() {
		return nil, nil
	}
	return &cred, nil
}

func (s *RedisStore) Set(ctx context.Context, cred *Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	var ttl time.Duration
	if !cred.ExpiresAt.IsZero() {
		ttl = time.Until(cred.ExpiresAt)
		if ttl <= 0 {
			return ErrExpired
		}
	}
	if err := s.client.Set(ctx, s.credentialKey(cred.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.credentialKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

func (s *RedisStore) Issue(ctx context.Context, ttl time.Duration) (*Captcha, error) {
	c, err := NewCaptcha(ttl)
	if err != nil {
		return nil, err
	}
	if err := s.client.Set(ctx, s.captchaKey(c.ID), c.Code, ttl).Err(); err != nil {
		return nil, fmt.Errorf("redis set captcha: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Verify(ctx context.Context, id, answer string) (bool, error) {
	code, err := s.client.GetDel(ctx, s.captchaKey(id)).Result()
	if stderrors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis verify captcha: %w", err)
	}
	return codesMatch(code, answer), nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var (
	_ Store        = (*RedisStore)(nil)
	_ CaptchaStore = (*RedisStore)(nil)
)
