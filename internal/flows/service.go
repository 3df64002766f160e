package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps.withDefaults()}
}

// Initialized reports whether the service has been wired with its provider
// and store.
func (s Service) Initialized() bool {
	return s.deps.ready()
}

func (s Service) Login(ctx context.Context, email, password string) (*Outcome, error) {
	return RunLogin(ctx, email, password, s.deps)
}

func (s Service) Signup(ctx context.Context, in SignupInput) (*Outcome, error) {
	return RunSignup(ctx, in, s.deps)
}

func (s Service) Logout(ctx context.Context) (LogoutResult, error) {
	return RunLogout(ctx, s.deps)
}

func (s Service) ForceLogout(ctx context.Context, reason string) {
	RunForceLogout(ctx, reason, s.deps)
}

func (s Service) Refresh(ctx context.Context) (*Outcome, error) {
	return RunRefresh(ctx, s.deps)
}

func (s Service) EnsureFresh(ctx context.Context) error {
	return RunEnsureFresh(ctx, s.deps)
}
