package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goCinema/internal/requestid"
	"github.com/MrEthical07/goCinema/session"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config configures a [Client].
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client talks to the auth provider. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	mu        sync.RWMutex
	userToken string
}

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("auth api key must not be empty")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("auth base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    cfg.HTTPClient,
	}, nil
}

// SetUserToken stores the bearer token of the signed-in user.
func (c *Client) SetUserToken(token string) {
	c.mu.Lock()
	c.userToken = token
	c.mu.Unlock()
}

// ClearUserToken drops the stored bearer token.
func (c *Client) ClearUserToken() {
	c.SetUserToken("")
}

// UserToken returns the stored bearer token.
func (c *Client) UserToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userToken
}

// Login exchanges email and password for tokens.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.post(ctx, "/auth/v1/token?grant_type=password", "", passwordGrant{Email: email, Password: password}, &out, "Authentication failed")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", "", refreshGrant{RefreshToken: refreshToken}, &out, "Authentication failed")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account. The profile is sent as user metadata when
// any name part is set.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*TokenResponse, error) {
	body := signupBody{Email: req.Email, Password: req.Password}
	if req.Name != "" || req.FirstName != "" || req.LastName != "" {
		name := req.Name
		if name == "" {
			name = strings.TrimSpace(req.FirstName + " " + req.LastName)
		}
		body.Data = &signupData{Name: name, FirstName: req.FirstName, LastName: req.LastName}
	}

	var raw json.RawMessage
	if err := c.post(ctx, "/auth/v1/signup", "", body, &raw, "Authentication failed"); err != nil {
		return nil, err
	}

	var out TokenResponse
	if len(raw) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("auth: decode signup response: %w", err)
	}
	if out.User == nil {
		// Confirmation-pending signups return the bare user object.
		var u session.User
		if err := json.Unmarshal(raw, &u); err == nil && u.ID != "" {
			out.User = &u
		}
	}
	return &out, nil
}

// ErrNoUserToken is returned by Logout when neither an explicit token nor a
// held user token is available.
var ErrNoUserToken = errors.New("auth: no user token to revoke")

// Logout revokes the session identified by accessToken. An empty accessToken
// falls back to the held user token.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		accessToken = c.UserToken()
	}
	if accessToken == "" {
		return ErrNoUserToken
	}
	return c.post(ctx, "/auth/v1/logout", accessToken, nil, nil, "Logout failed")
}

func (c *Client) post(ctx context.Context, path, bearer string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("auth: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("auth: build request: %w", err)
	}
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	requestid.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("auth: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, respBody, fallback)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("auth: decode response: %w", err)
	}
	return nil
}
