package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goCinema/internal/authapi"
	"github.com/MrEthical07/goCinema/session"
)

var (
	errNotReady      = errors.New("not ready")
	errNotAuth       = errors.New("not authenticated")
	errNoRefresh     = errors.New("no refresh token")
	errExpired       = errors.New("session expired")
	errBadResponse   = errors.New("invalid response")
	errTransportDown = errors.New("dial tcp: connection refused")
)

type fakeProvider struct {
	loginResp   *authapi.TokenResponse
	loginErr    error
	refreshResp *authapi.TokenResponse
	refreshErr  error
	signupResp  *authapi.TokenResponse
	signupErr   error
	logoutErr   error

	logins, refreshes, signups, logouts int
	lastLogoutToken                     string
	lastSignup                          authapi.SignupRequest
}

func (p *fakeProvider) Login(context.Context, string, string) (*authapi.TokenResponse, error) {
	p.logins++
	return p.loginResp, p.loginErr
}

func (p *fakeProvider) Refresh(context.Context, string) (*authapi.TokenResponse, error) {
	p.refreshes++
	return p.refreshResp, p.refreshErr
}

func (p *fakeProvider) Signup(_ context.Context, req authapi.SignupRequest) (*authapi.TokenResponse, error) {
	p.signups++
	p.lastSignup = req
	return p.signupResp, p.signupErr
}

func (p *fakeProvider) Logout(_ context.Context, token string) error {
	p.logouts++
	p.lastLogoutToken = token
	return p.logoutErr
}

var eventNames = []string{"login", "signup", "logout", "refresh", "session_expired"}

type recorder struct {
	metrics map[int]int
	events  []string
	bearer  string
}

func tokenResponse(access string, expiresAt int64) *authapi.TokenResponse {
	return &authapi.TokenResponse{
		AccessToken:  access,
		RefreshToken: "refresh-" + access,
		ExpiresAt:    expiresAt,
		User:         &session.User{ID: "u1", Email: "a@b.com", Role: "authenticated"},
	}
}

func newDeps(t *testing.T, p *fakeProvider, now time.Time) (Deps, *session.Store, *recorder) {
	t.Helper()
	clock := func() time.Time { return now }
	store := session.NewStore(context.Background(), session.NewMemoryStorage(), session.Options{Clock: clock})
	rec := &recorder{metrics: map[int]int{}}
	deps := Deps{
		Provider:  p,
		Store:     store,
		Now:       clock,
		SetBearer: func(tok string) { rec.bearer = tok },
		MetricInc: func(id int) { rec.metrics[id]++ },
		Emit: func(_ context.Context, kind int, success bool, _, _ string, _ error, _ func() map[string]string) {
			status := "fail"
			if success {
				status = "ok"
			}
			rec.events = append(rec.events, eventNames[kind]+":"+status)
		},
		Metrics: Metrics{
			LoginSuccess: 1, LoginFailure: 2, SignupSuccess: 3, SignupFailure: 4,
			SignupValidationRejected: 5, LogoutSuccess: 6, LogoutFailure: 7, LogoutLocal: 8,
			RefreshSuccess: 9, RefreshFailure: 10, SessionExpired: 11,
		},
		Events: Events{Login: 0, Signup: 1, Logout: 2, Refresh: 3, SessionExpiry: 4},
		Errors: Errors{
			EngineNotReady:   errNotReady,
			NotAuthenticated: errNotAuth,
			NoRefreshToken:   errNoRefresh,
			SessionExpired:   errExpired,
			InvalidResponse:  errBadResponse,
		},
	}
	return deps, store, rec
}

func TestRunLoginAuthenticatesSession(t *testing.T) {
	now := time.Unix(10_000, 0)
	p := &fakeProvider{loginResp: tokenResponse("T", now.Unix()+3600)}
	deps, store, rec := newDeps(t, p, now)

	out, err := RunLogin(context.Background(), "a@b.com", "pw", deps)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	st := store.State()
	if !st.IsAuthenticated || st.CurrentView != session.ViewHome || st.AccessToken != "T" || st.ExpiresAt != now.Unix()+3600 {
		t.Fatalf("unexpected session: %+v", st)
	}
	if out.ExpiresAt != st.ExpiresAt || rec.bearer != "T" {
		t.Fatalf("unexpected outcome %+v bearer=%q", out, rec.bearer)
	}
	if rec.metrics[1] != 1 || len(rec.events) != 1 || rec.events[0] != "login:ok" {
		t.Fatalf("unexpected observability: %+v", rec)
	}
}

func TestRunLoginDerivesExpiryFromExpiresIn(t *testing.T) {
	now := time.Unix(10_000, 0)
	resp := tokenResponse("T", 0)
	resp.ExpiresIn = 60
	deps, store, _ := newDeps(t, &fakeProvider{loginResp: resp}, now)

	if _, err := RunLogin(context.Background(), "a@b.com", "pw", deps); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := store.State().ExpiresAt; got != 10_060 {
		t.Fatalf("expected expiry 10060, got %d", got)
	}
}

func TestRunLoginFailureLeavesSessionUntouched(t *testing.T) {
	provErr := &authapi.Error{Status: 400, Code: 400, ErrorCode: "invalid_credentials", Msg: "Invalid login credentials"}
	deps, store, rec := newDeps(t, &fakeProvider{loginErr: provErr}, time.Now())

	_, err := RunLogin(context.Background(), "a@b.com", "bad", deps)
	if err != provErr {
		t.Fatalf("expected provider error verbatim, got %v", err)
	}
	if store.State().IsAuthenticated {
		t.Fatal("session must stay unauthenticated")
	}
	if rec.metrics[2] != 1 {
		t.Fatal("expected login failure metric")
	}
}

func TestRunLoginRejectsTokenlessResponse(t *testing.T) {
	deps, store, _ := newDeps(t, &fakeProvider{loginResp: &authapi.TokenResponse{}}, time.Now())
	if _, err := RunLogin(context.Background(), "a@b.com", "pw", deps); !errors.Is(err, errBadResponse) {
		t.Fatalf("expected invalid response, got %v", err)
	}
	if store.State().IsAuthenticated {
		t.Fatal("session must stay unauthenticated")
	}
}

func TestRunLoginNotReady(t *testing.T) {
	if _, err := RunLogin(context.Background(), "a", "b", Deps{Errors: Errors{EngineNotReady: errNotReady}}); err != errNotReady {
		t.Fatalf("expected not ready, got %v", err)
	}
}

func TestRunSignupValidation(t *testing.T) {
	p := &fakeProvider{}
	deps, _, rec := newDeps(t, p, time.Now())

	cases := []struct {
		in    SignupInput
		field string
	}{
		{SignupInput{Password: "pw", ConfirmPassword: "pw"}, "email"},
		{SignupInput{Email: "not-an-email", Password: "pw", ConfirmPassword: "pw"}, "email"},
		{SignupInput{Email: "a@b.com"}, "password"},
		{SignupInput{Email: "a@b.com", Password: "pw", ConfirmPassword: "other"}, "confirmPassword"},
	}
	for _, tc := range cases {
		field, _, ok := ValidateSignup(tc.in)
		if ok || field != tc.field {
			t.Fatalf("expected %s failure for %+v, got ok=%v field=%q", tc.field, tc.in, ok, field)
		}
		if _, err := RunSignup(context.Background(), tc.in, deps); err == nil {
			t.Fatalf("expected validation error for %+v", tc.in)
		}
	}
	if p.signups != 0 {
		t.Fatalf("validation failures must not reach the network, got %d calls", p.signups)
	}
	if rec.metrics[5] != len(cases) {
		t.Fatalf("expected %d validation rejections, got %d", len(cases), rec.metrics[5])
	}
}

func TestRunSignupAuthenticatesWithTokens(t *testing.T) {
	now := time.Unix(10_000, 0)
	p := &fakeProvider{signupResp: tokenResponse("S", now.Unix()+3600)}
	deps, store, _ := newDeps(t, p, now)

	out, err := RunSignup(context.Background(), SignupInput{
		Email: " a@b.com ", Password: "pw", ConfirmPassword: "pw", FirstName: " Ada ", LastName: "Lovelace",
	}, deps)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if out.ConfirmationRequired || !store.State().IsAuthenticated {
		t.Fatalf("expected authenticated session, got %+v", store.State())
	}
	if p.lastSignup.Email != "a@b.com" || p.lastSignup.FirstName != "Ada" {
		t.Fatalf("unexpected signup request: %+v", p.lastSignup)
	}
}

func TestRunSignupConfirmationPending(t *testing.T) {
	p := &fakeProvider{signupResp: &authapi.TokenResponse{User: &session.User{ID: "u2"}}}
	deps, store, rec := newDeps(t, p, time.Now())

	out, err := RunSignup(context.Background(), SignupInput{Email: "a@b.com", Password: "pw", ConfirmPassword: "pw"}, deps)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !out.ConfirmationRequired || out.User.ID != "u2" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if store.State().IsAuthenticated {
		t.Fatal("session must stay untouched without tokens")
	}
	if rec.metrics[3] != 1 {
		t.Fatal("expected signup success metric")
	}
}

func TestRunLogoutLocalWhenNoToken(t *testing.T) {
	p := &fakeProvider{}
	deps, _, rec := newDeps(t, p, time.Now())

	res, err := RunLogout(context.Background(), deps)
	if err != nil || !res.Local {
		t.Fatalf("expected local logout, got %+v err=%v", res, err)
	}
	if p.logouts != 0 {
		t.Fatal("no network call expected without a token")
	}
	if rec.metrics[8] != 1 {
		t.Fatal("expected local logout metric")
	}
}

func TestRunLogoutLocalWhenExpired(t *testing.T) {
	now := time.Unix(10_000, 0)
	p := &fakeProvider{}
	deps, store, _ := newDeps(t, p, now)
	if err := store.Authenticate(session.User{ID: "u1"}, "a", "r", now.Unix()); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	res, err := RunLogout(context.Background(), deps)
	if err != nil || !res.Local || p.logouts != 0 {
		t.Fatalf("expected local logout for expired token, got %+v err=%v calls=%d", res, err, p.logouts)
	}
	if store.State().IsAuthenticated {
		t.Fatal("expected cleared session")
	}
}

func TestRunLogoutFailureKeepsSession(t *testing.T) {
	now := time.Unix(10_000, 0)
	p := &fakeProvider{logoutErr: &authapi.Error{Status: 500, Msg: "Logout failed: Internal Server Error"}}
	deps, store, rec := newDeps(t, p, now)
	if err := store.Authenticate(session.User{ID: "u1"}, "a", "r", now.Unix()+3600); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if _, err := RunLogout(context.Background(), deps); err == nil {
		t.Fatal("expected logout error")
	}
	if !store.State().IsAuthenticated {
		t.Fatal("failed logout must not clear the session")
	}
	if p.lastLogoutToken != "a" || rec.metrics[7] != 1 {
		t.Fatalf("unexpected logout call token=%q metrics=%v", p.lastLogoutToken, rec.metrics)
	}

	p.logoutErr = nil
	if _, err := RunLogout(context.Background(), deps); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.State().IsAuthenticated || rec.metrics[6] != 1 {
		t.Fatal("expected cleared session after successful logout")
	}
}

func TestRunForceLogout(t *testing.T) {
	deps, store, rec := newDeps(t, &fakeProvider{}, time.Now())
	if err := store.Authenticate(session.User{ID: "u1"}, "a", "r", 1); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	RunForceLogout(context.Background(), "user", deps)
	if store.State().IsAuthenticated || rec.metrics[8] != 1 {
		t.Fatal("expected forced local clear")
	}
}

func TestRunRefreshKeepsUserWhenAbsent(t *testing.T) {
	now := time.Unix(10_000, 0)
	resp := tokenResponse("T2", now.Unix()+3600)
	resp.User = nil
	p := &fakeProvider{refreshResp: resp}
	deps, store, rec := newDeps(t, p, now)
	if err := store.Authenticate(session.User{ID: "keep"}, "a", "r", now.Unix()-1); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if _, err := RunRefresh(context.Background(), deps); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	st := store.State()
	if st.AccessToken != "T2" || st.User.ID != "keep" || store.IsTokenExpired() {
		t.Fatalf("unexpected refreshed state: %+v", st)
	}
	if rec.bearer != "T2" || rec.metrics[9] != 1 {
		t.Fatalf("unexpected refresh side effects: %+v", rec)
	}
}

func TestRunRefreshWithoutToken(t *testing.T) {
	deps, _, _ := newDeps(t, &fakeProvider{}, time.Now())
	if _, err := RunRefresh(context.Background(), deps); err != errNoRefresh {
		t.Fatalf("expected no refresh token error, got %v", err)
	}
}

func TestRunEnsureFresh(t *testing.T) {
	now := time.Unix(10_000, 0)

	t.Run("not authenticated", func(t *testing.T) {
		deps, _, _ := newDeps(t, &fakeProvider{}, now)
		if err := RunEnsureFresh(context.Background(), deps); err != errNotAuth {
			t.Fatalf("expected not authenticated, got %v", err)
		}
	})

	t.Run("fresh token", func(t *testing.T) {
		p := &fakeProvider{}
		deps, store, _ := newDeps(t, p, now)
		deps.RefreshLeeway = 30 * time.Second
		_ = store.Authenticate(session.User{ID: "u"}, "a", "r", now.Unix()+60)
		if err := RunEnsureFresh(context.Background(), deps); err != nil || p.refreshes != 0 {
			t.Fatalf("expected no refresh, err=%v calls=%d", err, p.refreshes)
		}
	})

	t.Run("within leeway refreshes", func(t *testing.T) {
		p := &fakeProvider{refreshResp: tokenResponse("N", now.Unix()+3600)}
		deps, store, _ := newDeps(t, p, now)
		deps.AutoRefresh = true
		deps.RefreshLeeway = 30 * time.Second
		_ = store.Authenticate(session.User{ID: "u"}, "a", "r", now.Unix()+10)
		if err := RunEnsureFresh(context.Background(), deps); err != nil {
			t.Fatalf("ensure fresh: %v", err)
		}
		if p.refreshes != 1 || store.State().AccessToken != "N" {
			t.Fatalf("expected refreshed token, got %+v", store.State())
		}
	})

	t.Run("expired without auto refresh clears", func(t *testing.T) {
		deps, store, rec := newDeps(t, &fakeProvider{}, now)
		_ = store.Authenticate(session.User{ID: "u"}, "a", "r", now.Unix())
		if err := RunEnsureFresh(context.Background(), deps); err != errExpired {
			t.Fatalf("expected session expired, got %v", err)
		}
		if store.State().IsAuthenticated || rec.metrics[11] != 1 {
			t.Fatal("expected cleared session")
		}
	})

	t.Run("provider rejection clears", func(t *testing.T) {
		p := &fakeProvider{refreshErr: &authapi.Error{Status: 400, ErrorCode: "invalid_grant", Msg: "Refresh Token Not Found"}}
		deps, store, _ := newDeps(t, p, now)
		deps.AutoRefresh = true
		_ = store.Authenticate(session.User{ID: "u"}, "a", "r", now.Unix()-5)
		err := RunEnsureFresh(context.Background(), deps)
		if !errors.Is(err, errExpired) {
			t.Fatalf("expected session expired, got %v", err)
		}
		var aerr *authapi.Error
		if !errors.As(err, &aerr) {
			t.Fatal("expected provider error to be joined")
		}
		if store.State().IsAuthenticated {
			t.Fatal("expected cleared session")
		}
	})

	t.Run("transport failure keeps session", func(t *testing.T) {
		p := &fakeProvider{refreshErr: errTransportDown}
		deps, store, _ := newDeps(t, p, now)
		deps.AutoRefresh = true
		_ = store.Authenticate(session.User{ID: "u"}, "a", "r", now.Unix()-5)
		if err := RunEnsureFresh(context.Background(), deps); err != errTransportDown {
			t.Fatalf("expected transport error, got %v", err)
		}
		if !store.State().IsAuthenticated {
			t.Fatal("transport failures must not clear the session")
		}
	})
}
