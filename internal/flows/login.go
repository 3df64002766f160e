package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goCinema/internal/authapi"
	"github.com/MrEthical07/goCinema/token"
)

// RunLogin exchanges credentials for tokens and authenticates the session.
// On failure the session is untouched and the provider error is returned
// verbatim.
func RunLogin(ctx context.Context, email, password string, deps Deps) (*Outcome, error) {
	deps = deps.withDefaults()
	if !deps.ready() {
		return nil, deps.Errors.EngineNotReady
	}

	resp, err := deps.Provider.Login(ctx, email, password)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.Emit(ctx, deps.Events.Login, false, "", email, err, nil)
		return nil, err
	}

	out, err := applyTokenResponse(resp, deps)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.Emit(ctx, deps.Events.Login, false, "", email, err, nil)
		return nil, err
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.Emit(ctx, deps.Events.Login, true, userID(out.User), email, nil, nil)
	return out, nil
}

// applyTokenResponse authenticates the session with a provider token payload.
func applyTokenResponse(resp *authapi.TokenResponse, deps Deps) (*Outcome, error) {
	if !resp.HasTokens() || resp.User == nil {
		return nil, deps.Errors.InvalidResponse
	}

	expiresAt := token.ResolveExpiry(resp.ExpiresAt, resp.ExpiresIn, resp.AccessToken, deps.Now())
	if expiresAt == 0 {
		deps.Warn("goCinema: auth response carried no usable expiry", "user_id", resp.User.ID)
	}
	if err := deps.Store.Authenticate(*resp.User, resp.AccessToken, resp.RefreshToken, expiresAt); err != nil {
		return nil, errors.Join(deps.Errors.InvalidResponse, err)
	}
	deps.SetBearer(resp.AccessToken)

	return &Outcome{
		User:         resp.User,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
