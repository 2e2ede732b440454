// Package config provides centralized configuration management. Settings
// layer from built-in defaults, an optional config file, and YTT_*
// environment variables, all funneled through viper.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers the built-in configuration defaults on the given
// viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "cache.sqlite3")

	v.SetDefault("throttle.min_interval", "8s")

	v.SetDefault("fetch.languages", []string{"en", "en-US", "it"})
	v.SetDefault("fetch.timeout", "30s")

	v.SetDefault("cache.redis.ttl", "1h")

	v.SetDefault("artifacts.dir", "log/transcripts")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "STRUCTURED")
	v.SetDefault("logging.ops_log.path", "log/operations.log")
	v.SetDefault("logging.ops_log.max_size_mb", 50)
	v.SetDefault("logging.ops_log.max_backups", 5)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)

	v.SetDefault("debug.enabled", false)
}

// Load decodes the current viper state into a Config, validates it, and
// installs it as the active configuration. Safe to call multiple times, so
// config reloads reuse it.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  cfg,
		TagName: "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("create config decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Throttle.MinInterval < 0 {
		return fmt.Errorf("throttle.min_interval must not be negative")
	}
	if c.Throttle.MinInterval > time.Hour {
		return fmt.Errorf("throttle.min_interval %s is implausibly large", c.Throttle.MinInterval)
	}
	switch c.Store.Driver {
	case "", "libsql":
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	return nil
}

// GetConfig returns the active configuration, or nil before Load.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}
