package config

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/ocoprec/core"
)

// 使用 memory / redis 缓存时，需在入口处 import _ "github.com/rushteam/ocoprec/config/builders"
// 以触发内置缓存后端的 init 注册。

// CacheBuilder 根据配置创建结果缓存。
type CacheBuilder func(ctx context.Context, cfg CacheConfig) (core.Store, error)

var (
	cacheBuilders   = make(map[string]CacheBuilder)
	cacheBuildersMu sync.RWMutex
)

// Register 注册一种缓存后端，通常在 init 中调用。
func Register(backend string, builder CacheBuilder) {
	if backend == "" || builder == nil {
		return
	}
	cacheBuildersMu.Lock()
	defer cacheBuildersMu.Unlock()
	cacheBuilders[backend] = builder
}

// SupportedBackends 返回已注册的缓存后端（排序），用于错误提示。
func SupportedBackends() []string {
	cacheBuildersMu.RLock()
	defer cacheBuildersMu.RUnlock()
	names := make([]string, 0, len(cacheBuilders))
	for name := range cacheBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenCache 按 cfg.Backend 创建缓存。backend 为 none 或空时返回 (nil, nil)。
func OpenCache(ctx context.Context, cfg CacheConfig) (core.Store, error) {
	if cfg.Backend == "" || cfg.Backend == "none" {
		return nil, nil
	}
	cacheBuildersMu.RLock()
	builder, ok := cacheBuilders[cfg.Backend]
	cacheBuildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported cache backend %q (supported: %v)", cfg.Backend, SupportedBackends())
	}
	return builder(ctx, cfg)
}
