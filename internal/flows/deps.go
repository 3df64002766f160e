package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goCinema/internal/authapi"
	"github.com/MrEthical07/goCinema/session"
)

// AuthProvider is the auth collaborator. *authapi.Client satisfies it.
type AuthProvider interface {
	Login(ctx context.Context, email, password string) (*authapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*authapi.TokenResponse, error)
	Signup(ctx context.Context, req authapi.SignupRequest) (*authapi.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// SessionStore is the slice of *session.Store the flows mutate.
type SessionStore interface {
	State() session.State
	IsTokenExpired() bool
	Authenticate(user session.User, accessToken, refreshToken string, expiresAt int64) error
	SetTokens(accessToken, refreshToken string, expiresAt int64)
	ClearAuthentication()
}

// Metrics carries metric IDs used by the flows.
type Metrics struct {
	LoginSuccess             int
	LoginFailure             int
	SignupSuccess            int
	SignupFailure            int
	SignupValidationRejected int
	LogoutSuccess            int
	LogoutFailure            int
	LogoutLocal              int
	RefreshSuccess           int
	RefreshFailure           int
	SessionExpired           int
}

// Events carries event kind IDs used by the flows.
type Events struct {
	Login         int
	Signup        int
	Logout        int
	Refresh       int
	SessionExpiry int
}

// Errors carries host-level sentinel errors used by the flows.
type Errors struct {
	EngineNotReady   error
	NotAuthenticated error
	NoRefreshToken   error
	SessionExpired   error
	InvalidResponse  error
	Validation       func(field, msg string) error
}

// Deps captures dependencies shared by every flow. The root engine builds it
// once.
type Deps struct {
	Provider AuthProvider
	Store    SessionStore

	Now       func() time.Time
	SetBearer func(token string)
	MetricInc func(id int)
	Emit      func(ctx context.Context, kind int, success bool, userID, email string, err error, metadata func() map[string]string)
	Warn      func(msg string, args ...any)

	AutoRefresh   bool
	RefreshLeeway time.Duration

	Metrics Metrics
	Events  Events
	Errors  Errors
}

// Outcome is the flow-local result of a token-issuing operation.
type Outcome struct {
	User                 *session.User
	AccessToken          string
	RefreshToken         string
	ExpiresAt            int64
	ConfirmationRequired bool
}

func (d *Deps) ready() bool {
	return d.Provider != nil && d.Store != nil
}

func (d *Deps) withDefaults() Deps {
	out := *d
	if out.Now == nil {
		out.Now = time.Now
	}
	if out.SetBearer == nil {
		out.SetBearer = func(string) {}
	}
	if out.MetricInc == nil {
		out.MetricInc = func(int) {}
	}
	if out.Emit == nil {
		out.Emit = func(context.Context, int, bool, string, string, error, func() map[string]string) {}
	}
	if out.Warn == nil {
		out.Warn = func(string, ...any) {}
	}
	if out.Errors.Validation == nil {
		out.Errors.Validation = func(field, msg string) error {
			return fmt.Errorf("%s: %s", field, msg)
		}
	}
	return out
}

func userID(u *session.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
