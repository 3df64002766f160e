package goCinema

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goCinema/browse"
	"github.com/MrEthical07/goCinema/catalog"
)

// Config defines a public type used by goCinema APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Auth    AuthConfig
	Catalog CatalogConfig
	Session SessionConfig
	Browse  BrowseConfig
	Events  EventsConfig
	Metrics MetricsConfig
}

/*
====================================
AUTH CONFIG
====================================
*/

// AuthConfig defines a public type used by goCinema APIs.
//
// AuthConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthConfig struct {
	BaseURL string // auth provider origin, e.g. https://xyz.supabase.co
	APIKey  string

	// AutoRefresh lets EnsureFreshSession renew an expiring token with the
	// refresh token instead of clearing the session.
	AutoRefresh   bool
	RefreshLeeway time.Duration

	// RequestTimeout applies to the default HTTP client only.
	RequestTimeout time.Duration
}

/*
====================================
CATALOG CONFIG
====================================
*/

// CatalogConfig defines a public type used by goCinema APIs.
//
// CatalogConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CatalogConfig struct {
	BaseURL          string
	APIKey           string
	CacheTTL         time.Duration
	MaxEntries       int
	CoalesceRequests bool
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goCinema APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	WriteTimeout time.Duration
}

/*
====================================
BROWSE CONFIG
====================================
*/

// BrowseConfig defines a public type used by goCinema APIs.
//
// BrowseConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BrowseConfig struct {
	Debounce time.Duration
}

/*
====================================
EVENTS CONFIG
====================================
*/

// EventsConfig defines a public type used by goCinema APIs.
//
// EventsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goCinema APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New]. Auth.BaseURL,
// Auth.APIKey and Catalog.APIKey have no usable default and must be set.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Auth: AuthConfig{
			AutoRefresh:    true,
			RefreshLeeway:  30 * time.Second,
			RequestTimeout: 15 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:          catalog.DefaultBaseURL,
			CacheTTL:         catalog.DefaultTTL,
			MaxEntries:       catalog.DefaultMaxEntries,
			CoalesceRequests: true,
		},
		Session: SessionConfig{
			WriteTimeout: 2 * time.Second,
		},
		Browse: BrowseConfig{
			Debounce: browse.DefaultDebounce,
		},
		Events: EventsConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Auth.BaseURL = strings.TrimSpace(cfg.Auth.BaseURL)
	out.Catalog.BaseURL = strings.TrimSpace(cfg.Catalog.BaseURL)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate returns an error wrapping ErrInvalidConfig for the first invalid field. It does not modify c.
func (c *Config) Validate() error {
	// Auth
	if err := validateBaseURL("Auth BaseURL", c.Auth.BaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Auth.APIKey) == "" {
		return invalidConfig("Auth APIKey must not be empty")
	}
	if c.Auth.RefreshLeeway < 0 {
		return invalidConfig("Auth RefreshLeeway must be >= 0")
	}
	if c.Auth.RefreshLeeway > time.Hour {
		return invalidConfig("Auth RefreshLeeway must be <= 1h")
	}
	if c.Auth.RequestTimeout <= 0 {
		return invalidConfig("Auth RequestTimeout must be > 0")
	}

	// Catalog
	if err := validateBaseURL("Catalog BaseURL", c.Catalog.BaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Catalog.APIKey) == "" {
		return invalidConfig("Catalog APIKey must not be empty")
	}
	if c.Catalog.CacheTTL <= 0 {
		return invalidConfig("Catalog CacheTTL must be > 0")
	}
	if c.Catalog.MaxEntries <= 0 {
		return invalidConfig("Catalog MaxEntries must be > 0")
	}

	// Session
	if c.Session.WriteTimeout <= 0 {
		return invalidConfig("Session WriteTimeout must be > 0")
	}

	// Browse
	if c.Browse.Debounce <= 0 {
		return invalidConfig("Browse Debounce must be > 0")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return invalidConfig("Events BufferSize must be > 0 when Events is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return invalidConfig("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func validateBaseURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return invalidConfig(field + " must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return invalidConfig(field + " must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalidConfig(field + " must use http or https")
	}
	return nil
}

func invalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
