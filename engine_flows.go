package goCinema

import (
	"context"
	"time"

	"github.com/MrEthical07/goCinema/catalog"
	"github.com/MrEthical07/goCinema/internal/events"
	"github.com/MrEthical07/goCinema/internal/flows"
	"github.com/MrEthical07/goCinema/internal/requestid"
)

func (e *Engine) newFlowService() flows.Service {
	return flows.New(flows.Deps{
		Provider:  e.auth,
		Store:     e.store,
		Now:       e.clock,
		SetBearer: e.auth.SetUserToken,
		MetricInc: func(id int) { e.metrics.Inc(MetricID(id)) },
		Emit:      e.emitEvent,
		Warn:      e.logger.Warn,

		AutoRefresh:   e.config.Auth.AutoRefresh,
		RefreshLeeway: e.config.Auth.RefreshLeeway,

		Metrics: flows.Metrics{
			LoginSuccess:             int(MetricLoginSuccess),
			LoginFailure:             int(MetricLoginFailure),
			SignupSuccess:            int(MetricSignupSuccess),
			SignupFailure:            int(MetricSignupFailure),
			SignupValidationRejected: int(MetricSignupValidationRejected),
			LogoutSuccess:            int(MetricLogoutSuccess),
			LogoutFailure:            int(MetricLogoutFailure),
			LogoutLocal:              int(MetricLogoutLocal),
			RefreshSuccess:           int(MetricRefreshSuccess),
			RefreshFailure:           int(MetricRefreshFailure),
			SessionExpired:           int(MetricSessionExpired),
		},
		Events: flows.Events{
			Login:         int(EventLogin),
			Signup:        int(EventSignup),
			Logout:        int(EventLogout),
			Refresh:       int(EventRefresh),
			SessionExpiry: int(EventSessionExpiry),
		},
		Errors: flows.Errors{
			EngineNotReady:   ErrEngineNotReady,
			NotAuthenticated: ErrNotAuthenticated,
			NoRefreshToken:   ErrNoRefreshToken,
			SessionExpired:   ErrSessionExpired,
			InvalidResponse:  ErrInvalidAuthResponse,
			Validation: func(field, msg string) error {
				return &ValidationError{Field: field, Msg: msg}
			},
		},
	})
}

// emitEvent builds the event lazily: nothing is allocated when events are
// disabled.
func (e *Engine) emitEvent(ctx context.Context, kind int, success bool, userID, email string, err error, metadata func() map[string]string) {
	if e.events == nil {
		return
	}

	ev := events.Event{
		Timestamp: e.clock().UTC(),
		Kind:      events.Kind(kind),
		UserID:    userID,
		Email:     email,
		Success:   success,
	}
	if id, ok := requestid.From(ctx); ok {
		ev.RequestID = id
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if metadata != nil {
		ev.Metadata = metadata()
	}

	e.events.Emit(ctx, ev)
}

func (e *Engine) catalogHooks() catalog.Hooks {
	return catalog.Hooks{
		OnCacheHit: func(string) {
			e.metrics.Inc(MetricCatalogCacheHit)
		},
		OnCacheMiss: func(string) {
			e.metrics.Inc(MetricCatalogCacheMiss)
		},
		OnFetch: func(_ string, d time.Duration, err error) {
			e.metrics.Observe(MetricCatalogFetchLatency, d)
			if err != nil {
				e.metrics.Inc(MetricCatalogRequestFailure)
			}
		},
	}
}
