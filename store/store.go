// Package store 提供 core.Store 的实现，用作查询结果缓存。
//
//	var cache core.Store = store.NewMemoryStore()
//	cache, err := store.NewRedisStore(ctx, store.RedisConfig{Addr: "localhost:6379"})
package store

import "github.com/rushteam/ocoprec/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名，便于在本包内使用。
var ErrNotFound = core.ErrStoreNotFound
