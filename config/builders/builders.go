// Package builders 注册内置的缓存后端。
package builders

import (
	"context"

	"github.com/rushteam/ocoprec/config"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/store"
)

func init() {
	config.Register("memory", BuildMemoryCache)
	config.Register("redis", BuildRedisCache)
}

func BuildMemoryCache(_ context.Context, _ config.CacheConfig) (core.Store, error) {
	return store.NewMemoryStore(), nil
}

func BuildRedisCache(ctx context.Context, cfg config.CacheConfig) (core.Store, error) {
	s, err := store.NewRedisStore(ctx, store.RedisConfig{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
