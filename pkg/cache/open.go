package cache

import (
	"context"

	"github.com/matzehuels/teamtree/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendFile, BackendNone:
		return nil
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_addr")
		}
		return nil
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend mongo needs mongo_uri")
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis, mongo or none)", c.Backend)
}

// Open returns the cache described by cfg. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case BackendMongo:
		c, err = NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		c, err = NewFileCache(cfg.Dir)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
