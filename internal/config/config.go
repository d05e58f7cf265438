package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Web      WebConfig      `mapstructure:"web"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TrackerConfig holds analysis and history settings
type TrackerConfig struct {
	StoreKey        string        `mapstructure:"store_key"`
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
	Timezone        string        `mapstructure:"timezone"` // IANA name or "Local"
}

// StorageConfig selects and configures the history store
type StorageConfig struct {
	Backend       string        `mapstructure:"backend"` // sqlite, memory or redis
	DBPath        string        `mapstructure:"db_path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
}

// WebConfig holds the HTML front-end configuration
type WebConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// A .env file in the working directory is loaded first; a missing config file falls back to defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("PUTCALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Tracker defaults
	v.SetDefault("tracker.store_key", "history.json")
	v.SetDefault("tracker.freshness_window", "24h")
	v.SetDefault("tracker.timezone", "Local")

	// Storage defaults
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.db_path", "./data/putcall.db")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "putcall")
	v.SetDefault("storage.redis_ttl", "0s")

	// Web defaults
	v.SetDefault("web.enabled", true)
	v.SetDefault("web.listen_addr", "127.0.0.1:8080")

	// Telegram defaults
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Tracker config
	if strings.TrimSpace(c.Tracker.StoreKey) == "" {
		return fmt.Errorf("tracker.store_key is required")
	}
	if c.Tracker.FreshnessWindow < time.Minute {
		return fmt.Errorf("tracker.freshness_window must be at least 1 minute")
	}
	if _, err := c.Tracker.Location(); err != nil {
		return fmt.Errorf("tracker.timezone is invalid: %w", err)
	}

	// Validate Storage config
	switch c.Storage.Backend {
	case "sqlite", "memory":
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required when backend is redis")
		}
		if c.Storage.RedisDB < 0 {
			return fmt.Errorf("storage.redis_db must not be negative")
		}
		if c.Storage.RedisTTL < 0 {
			return fmt.Errorf("storage.redis_ttl must not be negative")
		}
	default:
		return fmt.Errorf("storage.backend must be one of: sqlite, memory, redis")
	}

	// Validate Web config
	if c.Web.Enabled && c.Web.ListenAddr == "" {
		return fmt.Errorf("web.listen_addr is required when web is enabled")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.MaxRetries < 1 {
			return fmt.Errorf("telegram.max_retries must be at least 1")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Location resolves the configured timezone.
func (t TrackerConfig) Location() (*time.Location, error) {
	if t.Timezone == "" || strings.EqualFold(t.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(t.Timezone)
}
