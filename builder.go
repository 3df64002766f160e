package goCinema

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/goCinema/catalog"
	"github.com/MrEthical07/goCinema/internal/authapi"
	"github.com/MrEthical07/goCinema/internal/events"
	"github.com/MrEthical07/goCinema/session"
)

// Builder defines a public type used by goCinema APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config     Config
	storage    session.Storage
	httpClient *http.Client
	logger     *slog.Logger
	eventSink  EventSink
	clock      func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New returns a builder holding DefaultConfig; nothing is validated until Build.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig replaces the whole configuration with a trimmed copy of cfg. It is not safe for concurrent use.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStorage sets the backend the session is persisted to. Without it the
// session lives in memory only and is lost when the process exits.
func (b *Builder) WithStorage(s session.Storage) *Builder {
	b.storage = s
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient sets the client shared by the auth and catalog calls. The default has Auth.RequestTimeout.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithLogger sets the structured logger for swallowed background failures.
// The default discards everything.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithEventSink describes the witheventsink operation and its observable behavior.
//
// WithEventSink sets where lifecycle events go. Events are only dispatched when Events.Enabled is set.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithClock replaces time.Now for expiry checks. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms toggles the catalog fetch latency histogram. It requires metrics to be enabled.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, rehydrates the session from storage
// and returns a ready engine. A Builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Auth.RequestTimeout}
	}

	engine := &Engine{
		config:  cloneConfig(cfg),
		logger:  logger,
		clock:   clock,
		metrics: NewMetrics(cfg.Metrics),
	}

	// -------- AUTH PROVIDER --------
	auth, err := authapi.New(authapi.Config{
		BaseURL:    cfg.Auth.BaseURL,
		APIKey:     cfg.Auth.APIKey,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	engine.auth = auth

	// -------- CATALOG --------
	cat, err := catalog.NewClient(catalog.Config{
		BaseURL:          cfg.Catalog.BaseURL,
		APIKey:           cfg.Catalog.APIKey,
		TTL:              cfg.Catalog.CacheTTL,
		MaxEntries:       cfg.Catalog.MaxEntries,
		CoalesceRequests: cfg.Catalog.CoalesceRequests,
		HTTPClient:       httpClient,
		Clock:            clock,
		Logger:           logger,
		Hooks:            engine.catalogHooks(),
	})
	if err != nil {
		return nil, err
	}
	engine.catalog = cat

	// -------- SESSION STORE --------
	store := session.NewStore(context.Background(), b.storage, session.Options{
		Clock:        clock,
		Logger:       logger,
		WriteTimeout: cfg.Session.WriteTimeout,
	})
	store.AttachTokenHolder(auth)
	if st := store.State(); st.IsAuthenticated {
		auth.SetUserToken(st.AccessToken)
	}
	engine.store = store

	engine.events = events.NewDispatcher(events.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
		OnDrop: func(k events.Kind) {
			if k.Terminal() {
				logger.Warn("goCinema: terminal session event dropped", "event_type", k.String())
			}
		},
	}, b.eventSink)
	engine.flows = engine.newFlowService()

	b.built = true

	return engine, nil
}
