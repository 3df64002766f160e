package flows

import (
	"context"
	"strings"

	"github.com/MrEthical07/goCinema/internal/authapi"
)

// RunSignup validates the form, registers the account and authenticates the
// session when the provider returns tokens. Without tokens (email
// confirmation pending) the session is untouched and
// Outcome.ConfirmationRequired is set.
func RunSignup(ctx context.Context, in SignupInput, deps Deps) (*Outcome, error) {
	deps = deps.withDefaults()
	if !deps.ready() {
		return nil, deps.Errors.EngineNotReady
	}

	if field, msg, ok := ValidateSignup(in); !ok {
		deps.MetricInc(deps.Metrics.SignupValidationRejected)
		return nil, deps.Errors.Validation(field, msg)
	}

	email := strings.TrimSpace(in.Email)
	resp, err := deps.Provider.Signup(ctx, authapi.SignupRequest{
		Email:     email,
		Password:  in.Password,
		Name:      in.Name,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	})
	if err != nil {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.Emit(ctx, deps.Events.Signup, false, "", email, err, nil)
		return nil, err
	}

	if !resp.HasTokens() {
		deps.MetricInc(deps.Metrics.SignupSuccess)
		deps.Emit(ctx, deps.Events.Signup, true, userID(resp.User), email, nil, func() map[string]string {
			return map[string]string{"confirmation": "pending"}
		})
		return &Outcome{User: resp.User, ConfirmationRequired: true}, nil
	}

	out, err := applyTokenResponse(resp, deps)
	if err != nil {
		deps.MetricInc(deps.Metrics.SignupFailure)
		deps.Emit(ctx, deps.Events.Signup, false, "", email, err, nil)
		return nil, err
	}

	deps.MetricInc(deps.Metrics.SignupSuccess)
	deps.Emit(ctx, deps.Events.Signup, true, userID(out.User), email, nil, nil)
	return out, nil
}
