package config

import (
	"context"
	"fmt"

	"github.com/matzehuels/designstudio/pkg/cache"
	"github.com/matzehuels/designstudio/pkg/store"
)

// OpenStore connects the configured store backend.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendRedis:
		s, err := store.NewRedisStore(ctx, c.Store.RedisAddr, c.Store.RedisPassword, c.Store.RedisDB, c.Store.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis store %s: %w", c.Store.RedisAddr, err)
		}
		return s, nil
	case BackendMongo:
		s, err := store.NewMongoStore(ctx, c.Store.MongoURI, c.Store.MongoDatabase, c.Store.MongoCollection)
		if err != nil {
			return nil, fmt.Errorf("connect mongo store: %w", err)
		}
		return s, nil
	default:
		dir, err := c.StoreDir()
		if err != nil {
			return nil, err
		}
		return store.NewFileStore(dir)
	}
}

// OpenCache connects the configured cache backend. noCache forces the null
// cache.
func (c *Config) OpenCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.RedisAddr, c.Cache.RedisPassword, c.Cache.RedisDB, c.Cache.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache %s: %w", c.Cache.RedisAddr, err)
		}
		return rc, nil
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	}
}
