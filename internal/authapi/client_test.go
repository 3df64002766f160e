package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const mockTokenBody = `{
  "access_token": "mock-access-token",
  "token_type": "bearer",
  "expires_in": 3600,
  "expires_at": 1758021187,
  "refresh_token": "mock-refresh-token",
  "user": {
    "id": "991caea3-6cad-4052-abe1-4e1954d12534",
    "email": "test@example.com",
    "role": "authenticated",
    "email_confirmed_at": "2025-09-16T10:11:18.26493Z",
    "last_sign_in_at": "2025-09-16T10:13:07.163302936Z",
    "app_metadata": {"provider": "email", "providers": ["email"]},
    "user_metadata": {"email": "test@example.com", "email_verified": true, "name": "Test User", "firstName": "Test", "lastName": "User", "phone_verified": false, "sub": "991caea3-6cad-4052-abe1-4e1954d12534"},
    "created_at": "2025-09-16T10:06:30.771932Z",
    "updated_at": "2025-09-16T10:13:07.177812Z",
    "is_anonymous": false
  }
}`

type captured struct {
	method string
	uri    string
	header http.Header
	body   map[string]any
}

func newAuthServer(t *testing.T, status int, respBody string) (*Client, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.uri = r.URL.RequestURI()
		got.header = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &got.body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, APIKey: "anon-key"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, got
}

func TestLoginSendsPasswordGrant(t *testing.T) {
	c, got := newAuthServer(t, http.StatusOK, mockTokenBody)

	resp, err := c.Login(context.Background(), "test@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.method != http.MethodPost || got.uri != "/auth/v1/token?grant_type=password" {
		t.Fatalf("unexpected request %s %s", got.method, got.uri)
	}
	if got.header.Get("apikey") != "anon-key" || got.header.Get("Authorization") != "Bearer anon-key" {
		t.Fatalf("unexpected auth headers: %v", got.header)
	}
	if got.header.Get("Accept") != "*/*" || got.header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content headers: %v", got.header)
	}
	if got.header.Get("X-Request-Id") == "" {
		t.Fatal("expected request id")
	}
	if got.body["email"] != "test@example.com" || got.body["password"] != "password123" {
		t.Fatalf("unexpected body: %v", got.body)
	}

	if !resp.HasTokens() || resp.ExpiresAt != 1758021187 || resp.ExpiresIn != 3600 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.User == nil || resp.User.UserMetadata.FirstName != "Test" || resp.User.LastSignInAt == nil {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestLoginErrorIsVerbatim(t *testing.T) {
	c, _ := newAuthServer(t, http.StatusBadRequest, `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`)

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if aerr.Code != 400 || aerr.ErrorCode != "invalid_credentials" || aerr.Error() != "Invalid login credentials" {
		t.Fatalf("unexpected error: %+v", aerr)
	}
}

func TestErrorFallbackUsesStatusText(t *testing.T) {
	c, _ := newAuthServer(t, http.StatusInternalServerError, "")
	_, err := c.Refresh(context.Background(), "r")
	if err == nil || err.Error() != "Authentication failed: Internal Server Error" {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _ = newAuthServer(t, http.StatusUnauthorized, "")
	err = c.Logout(context.Background(), "user-token")
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Status != http.StatusUnauthorized || err.Error() != "Logout failed: Unauthorized" {
		t.Fatalf("unexpected logout error: %v", err)
	}
}

func TestErrorDescriptionShape(t *testing.T) {
	c, _ := newAuthServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Refresh Token Not Found"}`)
	_, err := c.Refresh(context.Background(), "stale")
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.ErrorCode != "invalid_grant" || aerr.Msg != "Refresh Token Not Found" {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestRefreshSendsRefreshGrant(t *testing.T) {
	c, got := newAuthServer(t, http.StatusOK, mockTokenBody)
	if _, err := c.Refresh(context.Background(), "mock-refresh-token"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got.uri != "/auth/v1/token?grant_type=refresh_token" || got.body["refresh_token"] != "mock-refresh-token" {
		t.Fatalf("unexpected refresh request %s %v", got.uri, got.body)
	}
}

func TestSignupSendsProfile(t *testing.T) {
	c, got := newAuthServer(t, http.StatusOK, mockTokenBody)
	_, err := c.Signup(context.Background(), SignupRequest{Email: "a@b.com", Password: "pw", FirstName: "Ada", LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if got.uri != "/auth/v1/signup" {
		t.Fatalf("unexpected uri %s", got.uri)
	}
	data, ok := got.body["data"].(map[string]any)
	if !ok || data["name"] != "Ada Lovelace" || data["firstName"] != "Ada" || data["lastName"] != "Lovelace" {
		t.Fatalf("unexpected signup data: %v", got.body)
	}
}

func TestSignupWithoutProfileOmitsData(t *testing.T) {
	c, got := newAuthServer(t, http.StatusOK, mockTokenBody)
	if _, err := c.Signup(context.Background(), SignupRequest{Email: "a@b.com", Password: "pw"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, ok := got.body["data"]; ok {
		t.Fatalf("expected no data field, got %v", got.body)
	}
}

func TestSignupConfirmationPendingReturnsBareUser(t *testing.T) {
	c, _ := newAuthServer(t, http.StatusOK, `{"id":"u-1","email":"a@b.com","role":"authenticated","confirmation_sent_at":"2025-09-16T10:06:30Z"}`)
	resp, err := c.Signup(context.Background(), SignupRequest{Email: "a@b.com", Password: "pw"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.HasTokens() || resp.User == nil || resp.User.ID != "u-1" {
		t.Fatalf("unexpected confirmation-pending response: %+v", resp)
	}
}

func TestSignupDisabled(t *testing.T) {
	c, _ := newAuthServer(t, http.StatusUnprocessableEntity, `{"code":422,"error_code":"signup_disabled","msg":"Signups not allowed for this instance"}`)
	_, err := c.Signup(context.Background(), SignupRequest{Email: "a@b.com", Password: "pw"})
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.ErrorCode != "signup_disabled" || aerr.Code != 422 {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogoutUsesUserBearer(t *testing.T) {
	c, got := newAuthServer(t, http.StatusNoContent, "")
	if err := c.Logout(context.Background(), "user-token"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got.uri != "/auth/v1/logout" || got.header.Get("Authorization") != "Bearer user-token" {
		t.Fatalf("unexpected logout request %s %v", got.uri, got.header)
	}
	if got.header.Get("apikey") != "anon-key" {
		t.Fatal("expected api key header on logout")
	}
}

func TestLogoutFallsBackToHeldToken(t *testing.T) {
	c, got := newAuthServer(t, http.StatusNoContent, "")
	c.SetUserToken("held-token")
	if err := c.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got.header.Get("Authorization") != "Bearer held-token" {
		t.Fatalf("expected held bearer, got %q", got.header.Get("Authorization"))
	}
}

func TestLogoutWithoutAnyTokenFails(t *testing.T) {
	c, got := newAuthServer(t, http.StatusNoContent, "")
	c.SetUserToken("stale")
	c.ClearUserToken()
	if err := c.Logout(context.Background(), ""); !errors.Is(err, ErrNoUserToken) {
		t.Fatalf("expected ErrNoUserToken, got %v", err)
	}
	if got.uri != "" {
		t.Fatalf("expected no request after the token was cleared, got %s", got.uri)
	}
}

func TestUserTokenHolder(t *testing.T) {
	c, err := New(Config{BaseURL: "https://auth.example.com", APIKey: "k"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.SetUserToken("t")
	if c.UserToken() != "t" {
		t.Fatal("expected stored token")
	}
	c.ClearUserToken()
	if c.UserToken() != "" {
		t.Fatal("expected cleared token")
	}
	if _, err := New(Config{BaseURL: "/relative", APIKey: "k"}); err == nil {
		t.Fatal("expected error for relative base url")
	}
}
