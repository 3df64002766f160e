package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goCinema/internal/authapi"
	"github.com/MrEthical07/goCinema/session"
)

// RunRefresh exchanges the stored refresh token for a new pair. A provider
// response without a user keeps the current user.
func RunRefresh(ctx context.Context, deps Deps) (*Outcome, error) {
	deps = deps.withDefaults()
	if !deps.ready() {
		return nil, deps.Errors.EngineNotReady
	}

	st := deps.Store.State()
	if st.RefreshToken == "" {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		return nil, deps.Errors.NoRefreshToken
	}

	resp, err := deps.Provider.Refresh(ctx, st.RefreshToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.Emit(ctx, deps.Events.Refresh, false, userID(st.User), "", err, nil)
		return nil, err
	}

	if resp.User == nil && st.User != nil {
		u := *st.User
		resp.User = &u
	}
	out, err := applyTokenResponse(resp, deps)
	if err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.Emit(ctx, deps.Events.Refresh, false, userID(st.User), "", err, nil)
		return nil, err
	}

	deps.MetricInc(deps.Metrics.RefreshSuccess)
	deps.Emit(ctx, deps.Events.Refresh, true, userID(out.User), "", nil, nil)
	return out, nil
}

// RunEnsureFresh makes sure an authenticated session holds an access token
// that is valid for at least RefreshLeeway. An expiring token is refreshed
// when AutoRefresh is set; otherwise, or when the provider rejects the
// refresh, the session is cleared and SessionExpired returned. Transport
// failures leave the session untouched.
func RunEnsureFresh(ctx context.Context, deps Deps) error {
	deps = deps.withDefaults()
	if !deps.ready() {
		return deps.Errors.EngineNotReady
	}

	st := deps.Store.State()
	if !st.IsAuthenticated {
		return deps.Errors.NotAuthenticated
	}

	now := deps.Now()
	if st.ExpiresAt != 0 && now.Add(deps.RefreshLeeway).Before(time.Unix(st.ExpiresAt, 0)) {
		return nil
	}

	if !deps.AutoRefresh || st.RefreshToken == "" {
		expire(ctx, st.User, "expired", deps)
		return deps.Errors.SessionExpired
	}

	_, err := RunRefresh(ctx, deps)
	if err == nil {
		return nil
	}

	var providerErr *authapi.Error
	if errors.As(err, &providerErr) || errors.Is(err, deps.Errors.InvalidResponse) {
		expire(ctx, st.User, "refresh_rejected", deps)
		return errors.Join(deps.Errors.SessionExpired, err)
	}
	deps.Warn("goCinema: session refresh failed", "error", err)
	return err
}

func expire(ctx context.Context, u *session.User, reason string, deps Deps) {
	deps.Store.ClearAuthentication()
	deps.MetricInc(deps.Metrics.SessionExpired)
	deps.Emit(ctx, deps.Events.SessionExpiry, true, userID(u), "", nil, func() map[string]string {
		return map[string]string{"reason": reason}
	})
}
