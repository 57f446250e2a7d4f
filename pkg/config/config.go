package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. COMPS_UPSTREAM_TOKEN.
const EnvPrefix = "COMPS"

// UpstreamConfig describes the marketplace search API.
type UpstreamConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Marketplace       string        `mapstructure:"marketplace"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryCount        int           `mapstructure:"retry_count"`
	Sort              string        `mapstructure:"sort"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
	// Token is a static bearer token for CLI use. The HTTP server takes the
	// caller's token from the request instead.
	Token string `mapstructure:"token"`
}

type CacheConfig struct {
	Backend         string        `mapstructure:"backend"` // memory or redis
	TTL             time.Duration `mapstructure:"ttl"`
	MaxEntries      int           `mapstructure:"max_entries"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // memory only; 0 disables
}

type Config struct {
	Server struct {
		Host string `mapstructure:"host"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Engine   struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"engine"`
	Cache CacheConfig `mapstructure:"cache"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")

	v.SetDefault("upstream.base_url", "https://api.ebay.com")
	v.SetDefault("upstream.marketplace", "EBAY_US")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.retry_count", 1)
	v.SetDefault("upstream.sort", "newlyListed")
	v.SetDefault("upstream.requests_per_second", 5.0)
	v.SetDefault("upstream.burst", 3)
	v.SetDefault("upstream.breaker_failures", 5)
	v.SetDefault("upstream.breaker_timeout", 30*time.Second)
	v.SetDefault("upstream.token", "")

	v.SetDefault("engine.concurrency", 3)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 15*time.Minute)
	v.SetDefault("cache.max_entries", 100)
	v.SetDefault("cache.cleanup_interval", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// LoadConfig reads config.yaml from path, overlays COMPS_* environment
// variables and falls back to defaults when no file exists.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("config: cache.ttl must be positive")
	}
	if c.Engine.Concurrency < 1 {
		return fmt.Errorf("config: engine.concurrency must be at least 1")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("config: upstream.base_url is required")
	}
	return nil
}
