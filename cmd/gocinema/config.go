package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goCinema "github.com/MrEthical07/goCinema"
	"github.com/spf13/viper"
)

// cliConfig is the file/env configuration of the gocinema command.
type cliConfig struct {
	Auth    authConfig    `mapstructure:"auth"`
	Catalog catalogConfig `mapstructure:"catalog"`
	Storage storageConfig `mapstructure:"storage"`
	Browse  browseConfig  `mapstructure:"browse"`
	Log     logConfig     `mapstructure:"log"`
}

type authConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	AutoRefresh    bool          `mapstructure:"auto_refresh"`
	RefreshLeeway  time.Duration `mapstructure:"refresh_leeway"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type catalogConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	MaxEntries       int           `mapstructure:"max_entries"`
	CoalesceRequests bool          `mapstructure:"coalesce_requests"`
}

// storageConfig selects where the session blob lives between runs.
type storageConfig struct {
	Backend       string `mapstructure:"backend"` // file | redis
	Dir           string `mapstructure:"dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

type browseConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type logConfig struct {
	Level string `mapstructure:"level"`
}

// loadConfig reads configuration from an optional gocinema.yaml and from
// GOCINEMA_* environment variables. An explicit path must exist.
func loadConfig(path string) (*cliConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gocinema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "gocinema"))
		}
	}

	v.SetEnvPrefix("GOCINEMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := goCinema.DefaultConfig()

	// Auth defaults
	v.SetDefault("auth.base_url", def.Auth.BaseURL)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.auto_refresh", def.Auth.AutoRefresh)
	v.SetDefault("auth.refresh_leeway", def.Auth.RefreshLeeway)
	v.SetDefault("auth.request_timeout", def.Auth.RequestTimeout)

	// Catalog defaults
	v.SetDefault("catalog.base_url", def.Catalog.BaseURL)
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.cache_ttl", def.Catalog.CacheTTL)
	v.SetDefault("catalog.max_entries", def.Catalog.MaxEntries)
	v.SetDefault("catalog.coalesce_requests", def.Catalog.CoalesceRequests)

	// Storage defaults
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", defaultStorageDir())
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "gocinema:")

	v.SetDefault("browse.debounce", def.Browse.Debounce)
	v.SetDefault("log.level", "warn")
}

func defaultStorageDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gocinema"
	}
	return filepath.Join(dir, "gocinema")
}

func (c *cliConfig) validate() error {
	switch c.Storage.Backend {
	case "file":
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case "redis":
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return errors.New("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q (want file or redis)", c.Storage.Backend)
	}
	return nil
}

// engineConfig maps the command configuration onto the engine's.
func (c *cliConfig) engineConfig() goCinema.Config {
	cfg := goCinema.DefaultConfig()
	cfg.Auth.BaseURL = c.Auth.BaseURL
	cfg.Auth.APIKey = c.Auth.APIKey
	cfg.Auth.AutoRefresh = c.Auth.AutoRefresh
	cfg.Auth.RefreshLeeway = c.Auth.RefreshLeeway
	cfg.Auth.RequestTimeout = c.Auth.RequestTimeout
	cfg.Catalog.BaseURL = c.Catalog.BaseURL
	cfg.Catalog.APIKey = c.Catalog.APIKey
	cfg.Catalog.CacheTTL = c.Catalog.CacheTTL
	cfg.Catalog.MaxEntries = c.Catalog.MaxEntries
	cfg.Catalog.CoalesceRequests = c.Catalog.CoalesceRequests
	cfg.Browse.Debounce = c.Browse.Debounce
	return cfg
}
