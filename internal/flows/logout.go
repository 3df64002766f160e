package flows

import "context"

// LogoutResult reports how a logout completed.
type LogoutResult struct {
	// Local is true when the session was cleared without calling the
	// provider (no token, or token already expired).
	Local bool
}

// RunLogout revokes the session with the provider and clears it locally.
// A provider failure leaves the session authenticated.
func RunLogout(ctx context.Context, deps Deps) (LogoutResult, error) {
	deps = deps.withDefaults()
	if !deps.ready() {
		return LogoutResult{}, deps.Errors.EngineNotReady
	}

	st := deps.Store.State()
	if st.AccessToken == "" || deps.Store.IsTokenExpired() {
		deps.Store.ClearAuthentication()
		deps.MetricInc(deps.Metrics.LogoutLocal)
		deps.Emit(ctx, deps.Events.Logout, true, userID(st.User), "", nil, func() map[string]string {
			return map[string]string{"mode": "local"}
		})
		return LogoutResult{Local: true}, nil
	}

	if err := deps.Provider.Logout(ctx, st.AccessToken); err != nil {
		deps.MetricInc(deps.Metrics.LogoutFailure)
		deps.Emit(ctx, deps.Events.Logout, false, userID(st.User), "", err, nil)
		return LogoutResult{}, err
	}

	deps.Store.ClearAuthentication()
	deps.MetricInc(deps.Metrics.LogoutSuccess)
	deps.Emit(ctx, deps.Events.Logout, true, userID(st.User), "", nil, nil)
	return LogoutResult{}, nil
}

// RunForceLogout clears the session without calling the provider.
func RunForceLogout(ctx context.Context, reason string, deps Deps) {
	deps = deps.withDefaults()
	if deps.Store == nil {
		return
	}
	st := deps.Store.State()
	deps.Store.ClearAuthentication()
	deps.MetricInc(deps.Metrics.LogoutLocal)
	deps.Emit(ctx, deps.Events.Logout, true, userID(st.User), "", nil, func() map[string]string {
		return map[string]string{"mode": "forced", "reason": reason}
	})
}
