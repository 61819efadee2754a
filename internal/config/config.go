package config

import (
	"time"

	"github.com/vovakirdan/polychat-server/internal/core"
	"github.com/vovakirdan/polychat-server/internal/lang"
	"github.com/vovakirdan/polychat-server/internal/translate"
	"github.com/vovakirdan/polychat-server/internal/translate/cache"
	"github.com/vovakirdan/polychat-server/internal/translate/provider"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	BaseLanguage      string        `mapstructure:"base_language" yaml:"base_language"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`

	Relay       RelayConfig       `mapstructure:"relay" yaml:"relay"`
	Translation TranslationConfig `mapstructure:"translation" yaml:"translation"`
}

// RelayConfig tunes message fan-out.
type RelayConfig struct {
	FanoutLimit       int `mapstructure:"fanout_limit" yaml:"fanout_limit"`
	OutboundBuffer    int `mapstructure:"outbound_buffer" yaml:"outbound_buffer"`
	MessagesPerMinute int `mapstructure:"messages_per_minute" yaml:"messages_per_minute"`
}

// TranslationConfig configures providers and caching.
type TranslationConfig struct {
	Mirrors         []string      `mapstructure:"mirrors" yaml:"mirrors"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FallbackEnabled bool          `mapstructure:"fallback_enabled" yaml:"fallback_enabled"`
	FallbackURL     string        `mapstructure:"fallback_url" yaml:"fallback_url"`
	Cache           CacheConfig   `mapstructure:"cache" yaml:"cache"`
}

// CacheConfig selects and tunes the translation cache.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend" yaml:"backend"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
	RedisURL      string        `mapstructure:"redis_url" yaml:"redis_url"`
	KeyPrefix     string        `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		DatabasePath:      "polychat.db",
		BaseLanguage:      lang.Default,
		MaxMessageBytes:   64 << 10,
		Relay: RelayConfig{
			FanoutLimit:       core.DefaultFanoutLimit,
			OutboundBuffer:    core.DefaultOutboundBuffer,
			MessagesPerMinute: 60,
		},
		Translation: TranslationConfig{
			Mirrors:         append([]string(nil), translate.DefaultMirrors...),
			Timeout:         translate.DefaultTimeout,
			FallbackEnabled: true,
			FallbackURL:     provider.DefaultFallbackURL,
			Cache: CacheConfig{
				Backend:       CacheBackendMemory,
				TTL:           translate.DefaultCacheTTL,
				SweepInterval: 5 * time.Minute,
				KeyPrefix:     cache.DefaultKeyPrefix,
			},
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Only the top-level server settings exposed as CLI flags are considered.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.BaseLanguage != "" {
		c.BaseLanguage = other.BaseLanguage
	}
	if other.Translation.Cache.Backend != "" {
		c.Translation.Cache.Backend = other.Translation.Cache.Backend
	}
	if other.Translation.Cache.RedisURL != "" {
		c.Translation.Cache.RedisURL = other.Translation.Cache.RedisURL
	}
}
