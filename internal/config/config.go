// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	CacheDir string         `mapstructure:"cache_dir"`
	Resume   bool           `mapstructure:"resume"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Harvest  HarvestConfig  `mapstructure:"harvest"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Registry RegistryConfig `mapstructure:"registry"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// HTTPConfig configures the document fetcher.
type HTTPConfig struct {
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
}

// HarvestConfig governs traversal behavior.
type HarvestConfig struct {
	CheckpointEvery int `mapstructure:"checkpoint_every"`
}

// StorageConfig selects where member artifacts land.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// RegistryConfig controls the optional harvest registry database.
type RegistryConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
}

// NotifyConfig controls optional member-harvested notifications.
type NotifyConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// ServerConfig enables the status/metrics HTTP server when Addr is set.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// DefaultCacheDir is where harvested artifacts and state live unless a
// cache directory is configured explicitly.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "ldes-harvester")
}

// Load builds a Config from defaults, an optional config file, and
// HARVESTER_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache_dir", DefaultCacheDir())
	v.SetDefault("resume", true)

	v.SetDefault("http.user_agent", "ldes-harvester/1.0 (+https://github.com/ldes-tools/harvester)")
	v.SetDefault("http.request_timeout", "30s")
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_base", "1s")

	v.SetDefault("harvest.checkpoint_every", 10)

	v.SetDefault("storage.provider", "fs")
	v.SetDefault("registry.provider", "noop")
	v.SetDefault("notify.provider", "noop")

	v.SetDefault("server.addr", "")
	v.SetDefault("logging.development", false)
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.CacheDir) == "" {
		return fmt.Errorf("cache_dir must be set")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("http.request_timeout must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	if c.HTTP.BackoffBase <= 0 {
		return fmt.Errorf("http.backoff_base must be > 0")
	}
	if c.Harvest.CheckpointEvery <= 0 {
		return fmt.Errorf("harvest.checkpoint_every must be > 0")
	}
	switch c.Storage.Provider {
	case "fs", "noop":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is 'gcs'")
		}
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	switch c.Registry.Provider {
	case "noop":
	case "postgres":
		if c.Registry.DSN == "" {
			return fmt.Errorf("registry.dsn must be set when registry.provider is 'postgres'")
		}
	default:
		return fmt.Errorf("unknown registry provider: %s", c.Registry.Provider)
	}
	switch c.Notify.Provider {
	case "noop":
	case "pubsub":
		if c.Notify.ProjectID == "" || c.Notify.TopicID == "" {
			return fmt.Errorf("notify.project_id and notify.topic_id must be set when notify.provider is 'pubsub'")
		}
	default:
		return fmt.Errorf("unknown notify provider: %s", c.Notify.Provider)
	}
	return nil
}
