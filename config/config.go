// Package config 负责查询层的分层配置加载。
//
// 加载顺序（后者覆盖前者）：
//  1. 结构体默认值
//  2. YAML 配置文件（--config 或 OCOPREC_CONFIG 指定，可选）
//  3. 环境变量，前缀 OCOPREC_，两个下划线表示层级，如 OCOPREC_ARTIFACTS__DIR、OCOPREC_CACHE__BACKEND
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/core"
)

const (
	// EnvPrefix 是环境变量前缀。
	EnvPrefix = "OCOPREC_"

	// ConfigPathEnvVar 指定配置文件路径的环境变量。
	ConfigPathEnvVar = "OCOPREC_CONFIG"
)

// Config 是完整配置。
type Config struct {
	Artifacts artifact.Config `koanf:"artifacts" yaml:"artifacts"`
	Query     QueryConfig     `koanf:"query" yaml:"query"`
	Cache     CacheConfig     `koanf:"cache" yaml:"cache"`
	Log       LogConfig       `koanf:"log" yaml:"log"`
}

// QueryConfig 查询默认值与上限。
type QueryConfig struct {
	TopN             int    `koanf:"top_n" yaml:"top_n" validate:"gt=0"`
	MaxTopN          int    `koanf:"max_top_n" yaml:"max_top_n" validate:"gte=0"`
	PerPage          int    `koanf:"per_page" yaml:"per_page" validate:"gt=0"`
	MaxPerPage       int    `koanf:"max_per_page" yaml:"max_per_page" validate:"gte=0"`
	PlaceholderImage string `koanf:"placeholder_image" yaml:"placeholder_image"`
}

// Defaults 转换为 core.QueryDefaults。
func (q QueryConfig) Defaults() core.QueryDefaults {
	return core.QueryDefaults{
		TopN:             q.TopN,
		MaxTopN:          q.MaxTopN,
		PerPage:          q.PerPage,
		MaxPerPage:       q.MaxPerPage,
		PlaceholderImage: q.PlaceholderImage,
	}
}

// CacheConfig 结果缓存配置。
type CacheConfig struct {
	// Backend: none, memory, redis
	Backend string `koanf:"backend" yaml:"backend" validate:"oneof=none memory redis"`

	// TTL 单位秒，0 表示不过期
	TTL int `koanf:"ttl" yaml:"ttl" validate:"gte=0"`

	Redis RedisConfig `koanf:"redis" yaml:"redis"`
}

// RedisConfig Redis 连接配置。
type RedisConfig struct {
	Addr      string `koanf:"addr" yaml:"addr"`
	Password  string `koanf:"password" yaml:"password"`
	DB        int    `koanf:"db" yaml:"db" validate:"gte=0"`
	KeyPrefix string `koanf:"key_prefix" yaml:"key_prefix"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=json console"`
}

// Default 返回默认配置。
func Default() *Config {
	q := core.DefaultQueryDefaults()
	return &Config{
		Artifacts: artifact.DefaultConfig(),
		Query: QueryConfig{
			TopN:             q.TopN,
			MaxTopN:          q.MaxTopN,
			PerPage:          q.PerPage,
			MaxPerPage:       q.MaxPerPage,
			PlaceholderImage: q.PlaceholderImage,
		},
		Cache: CacheConfig{
			Backend: "none",
			TTL:     600,
			Redis: RedisConfig{
				Addr: "127.0.0.1:6379",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 按默认值、配置文件、环境变量的顺序加载并校验配置。
// path 为空时读取 OCOPREC_CONFIG；两者都为空则跳过文件层。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc: OCOPREC_ARTIFACTS__MATRIX_FILE -> artifacts.matrix_file
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	if key == "CONFIG" {
		// 配置文件路径本身不是配置项
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

var validate = validator.New()

// Validate 校验配置取值。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Query.MaxTopN > 0 && c.Query.TopN > c.Query.MaxTopN {
		return fmt.Errorf("query.top_n (%d) exceeds query.max_top_n (%d)", c.Query.TopN, c.Query.MaxTopN)
	}
	if c.Query.MaxPerPage > 0 && c.Query.PerPage > c.Query.MaxPerPage {
		return fmt.Errorf("query.per_page (%d) exceeds query.max_per_page (%d)", c.Query.PerPage, c.Query.MaxPerPage)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when cache.backend is redis")
	}
	return nil
}

// Dump 以 YAML 输出配置，Redis 密码会被隐藏。
func Dump(c *Config) ([]byte, error) {
	out := *c
	if out.Cache.Redis.Password != "" {
		out.Cache.Redis.Password = "******"
	}
	return yamlv3.Marshal(&out)
}
