package authapi

import "github.com/MrEthical07/goCinema/session"

// TokenResponse is the provider's token payload. Signup with email
// confirmation pending returns a user and no tokens.
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	RefreshToken string        `json:"refresh_token"`
	User         *session.User `json:"user"`
}

// HasTokens reports whether both tokens are present.
func (r *TokenResponse) HasTokens() bool {
	return r != nil && r.AccessToken != "" && r.RefreshToken != ""
}

// SignupRequest carries the signup form. Name defaults to "First Last" when
// empty.
type SignupRequest struct {
	Email     string
	Password  string
	Name      string
	FirstName string
	LastName  string
}

type signupData struct {
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type signupBody struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Data     *signupData `json:"data,omitempty"`
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}
