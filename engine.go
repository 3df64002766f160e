package goCinema

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrEthical07/goCinema/browse"
	"github.com/MrEthical07/goCinema/catalog"
	"github.com/MrEthical07/goCinema/internal/authapi"
	"github.com/MrEthical07/goCinema/internal/events"
	"github.com/MrEthical07/goCinema/internal/flows"
	"github.com/MrEthical07/goCinema/session"
	"github.com/MrEthical07/goCinema/token"
)

// Engine defines a public type used by goCinema APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config  Config
	logger  *slog.Logger
	clock   func() time.Time
	store   *session.Store
	auth    *authapi.Client
	catalog *catalog.Client
	flows   flows.Service
	events  *events.Dispatcher
	metrics *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close stops the event dispatcher after draining queued events. It is safe to call more than once.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.events.Close()
}

// EventsDropped reports how many events were discarded across all kinds.
func (e *Engine) EventsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.events.Dropped()
}

// EventStats returns delivered and dropped counts keyed by event kind name.
// Every kind is present, zero when events are disabled.
func (e *Engine) EventStats() EventStats {
	out := EventStats{
		Delivered: make(map[string]uint64, events.KindCount),
		Dropped:   make(map[string]uint64, events.KindCount),
	}
	var st events.Stats
	if e != nil {
		st = e.events.Stats()
	}
	for _, k := range events.Kinds() {
		out.Delivered[k.String()] = st.Delivered[k]
		out.Dropped[k.String()] = st.Dropped[k]
	}
	return out
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot returns a point-in-time copy of the counters and histograms. It is safe for concurrent use.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Session returns the session store. Callers may read State, Subscribe and
// SetCurrentView; authentication changes should go through the Engine.
func (e *Engine) Session() *session.Store {
	return e.store
}

// Catalog returns the cached catalog client shared by every browser.
func (e *Engine) Catalog() *catalog.Client {
	return e.catalog
}

// NewBrowser returns an idle coordinator over the engine's catalog client.
// The caller must Start it and Close it when done.
func (e *Engine) NewBrowser() *browse.Coordinator {
	return browse.New(e.catalog, browse.Options{
		Debounce: e.config.Browse.Debounce,
		Logger:   e.logger,
	})
}

/*
====================================
AUTHENTICATION
====================================
*/

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation or the provider call fails.
// On success it authenticates the engine's session and persists it; on failure the session is left untouched.
func (e *Engine) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	out, err := e.flows.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return toAuthResult(out), nil
}

// Signup validates in locally and registers the account. The session is
// authenticated only when the provider answers with tokens.
func (e *Engine) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	out, err := e.flows.Signup(ctx, in)
	if err != nil {
		return nil, err
	}
	return toAuthResult(out), nil
}

// Logout revokes the session with the provider and clears it. With no
// access token, or an expired one, the session is cleared locally without a
// network call. A provider failure is returned and the session is kept.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	_, err := e.flows.Logout(ctx)
	return err
}

// ForceLogout clears the session locally.
func (e *Engine) ForceLogout() {
	if e == nil {
		return
	}
	e.flows.ForceLogout(context.Background(), "user")
}

// RefreshSession describes the refreshsession operation and its observable behavior.
//
// RefreshSession may return an error when no refresh token is held or the provider call fails.
// On success it replaces the session tokens and persists them; a rejected refresh clears the session.
func (e *Engine) RefreshSession(ctx context.Context) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	out, err := e.flows.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return toAuthResult(out), nil
}

// EnsureFreshSession returns nil when the access token stays valid for at
// least Auth.RefreshLeeway. Otherwise it refreshes (Auth.AutoRefresh) or
// clears the session and returns ErrSessionExpired.
func (e *Engine) EnsureFreshSession(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	return e.flows.EnsureFresh(ctx)
}

// TokenStatus describes the tokenstatus operation and its observable behavior.
//
// TokenStatus reads the session snapshot and the engine clock; it never refreshes or clears the session.
func (e *Engine) TokenStatus() TokenStatus {
	if e == nil {
		return TokenStatus{Expired: true, Display: token.FormatRemaining(0)}
	}
	st := e.store.State()
	now := e.clock()
	remaining := token.TimeUntilExpiryAt(st.ExpiresAt, now)
	return TokenStatus{
		Authenticated: st.IsAuthenticated,
		Expired:       token.IsExpiredAt(st.ExpiresAt, now),
		Remaining:     remaining,
		Display:       token.FormatRemaining(remaining),
	}
}

func toAuthResult(out *flows.Outcome) *AuthResult {
	if out == nil {
		return nil
	}
	return &AuthResult{
		User:                 out.User,
		AccessToken:          out.AccessToken,
		RefreshToken:         out.RefreshToken,
		ExpiresAt:            out.ExpiresAt,
		ConfirmationRequired: out.ConfirmationRequired,
	}
}
