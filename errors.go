package goCinema

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation needs a signed-in session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoRefreshToken is returned by RefreshSession when the session holds no refresh token.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrSessionExpired is returned when an expired session could not be renewed and was cleared.
	ErrSessionExpired = errors.New("session expired")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidAuthResponse is returned when the auth provider answers 2xx without a usable token pair.
	ErrInvalidAuthResponse = errors.New("invalid auth response")
)

// ValidationError reports a signup form field rejected locally, before any
// network call.
type ValidationError struct {
	Field string
	Msg   string
}

// Error returns the human readable message.
func (e *ValidationError) Error() string {
	return e.Msg
}
