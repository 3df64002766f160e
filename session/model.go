package session

import (
	"slices"
	"time"
)

// View is the routing intent exposed to the presentation layer.
type View string

const (
	ViewLogin  View = "login"
	ViewSignup View = "signup"
	ViewHome   View = "home"
)

// Valid reports whether v is one of the known views.
func (v View) Valid() bool {
	switch v {
	case ViewLogin, ViewSignup, ViewHome:
		return true
	}
	return false
}

// AppMetadata is provider-controlled account metadata.
type AppMetadata struct {
	Provider  string   `json:"provider,omitempty"`
	Providers []string `json:"providers,omitempty"`
}

// UserMetadata is the user-editable profile attached at signup.
type UserMetadata struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
	Sub           string `json:"sub,omitempty"`
	Name          string `json:"name,omitempty"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
}

// User is the authenticated account as reported by the auth provider.
type User struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	Role             string       `json:"role"`
	EmailConfirmedAt *time.Time   `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time   `json:"last_sign_in_at,omitempty"`
	AppMetadata      AppMetadata  `json:"app_metadata"`
	UserMetadata     UserMetadata `json:"user_metadata"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	IsAnonymous      bool         `json:"is_anonymous"`
}

// DisplayName returns the best human readable name for u.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	m := u.UserMetadata
	switch {
	case m.FirstName != "" && m.LastName != "":
		return m.FirstName + " " + m.LastName
	case m.FirstName != "":
		return m.FirstName
	case m.Name != "":
		return m.Name
	}
	return u.Email
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.AppMetadata.Providers = slices.Clone(u.AppMetadata.Providers)
	if u.EmailConfirmedAt != nil {
		t := *u.EmailConfirmedAt
		c.EmailConfirmedAt = &t
	}
	if u.LastSignInAt != nil {
		t := *u.LastSignInAt
		c.LastSignInAt = &t
	}
	return &c
}

// UserPatch is a partial update for [Store.UpdateUser]. Nil fields are left
// untouched.
type UserPatch struct {
	Email            *string
	Role             *string
	EmailConfirmedAt *time.Time
	LastSignInAt     *time.Time
	AppMetadata      *AppMetadata
	UserMetadata     *UserMetadata
	UpdatedAt        *time.Time
	IsAnonymous      *bool
}

func (p UserPatch) applyTo(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.EmailConfirmedAt != nil {
		t := *p.EmailConfirmedAt
		u.EmailConfirmedAt = &t
	}
	if p.LastSignInAt != nil {
		t := *p.LastSignInAt
		u.LastSignInAt = &t
	}
	if p.AppMetadata != nil {
		u.AppMetadata = *p.AppMetadata
		u.AppMetadata.Providers = slices.Clone(p.AppMetadata.Providers)
	}
	if p.UserMetadata != nil {
		u.UserMetadata = *p.UserMetadata
	}
	if p.UpdatedAt != nil {
		u.UpdatedAt = *p.UpdatedAt
	}
	if p.IsAnonymous != nil {
		u.IsAnonymous = *p.IsAnonymous
	}
}

// State is an immutable snapshot of the session. Tokens use "" for absent
// and ExpiresAt uses 0 for absent.
type State struct {
	CurrentView     View
	IsAuthenticated bool
	User            *User
	AccessToken     string
	RefreshToken    string
	ExpiresAt       int64
}

func defaultState() State {
	return State{CurrentView: ViewLogin}
}

func (s State) clone() State {
	s.User = s.User.clone()
	return s
}

// authenticated evaluates the IsAuthenticated invariant from the other fields.
func (s State) authenticated() bool {
	return s.User != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// ChangeKind names the transition that produced a [Change].
type ChangeKind uint8

const (
	ChangeAuthenticated ChangeKind = iota + 1
	ChangeCleared
	ChangeUserUpdated
	ChangeTokensSet
	ChangeTokensCleared
	ChangeViewChanged
	ChangeReset
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAuthenticated:
		return "authenticated"
	case ChangeCleared:
		return "cleared"
	case ChangeUserUpdated:
		return "user_updated"
	case ChangeTokensSet:
		return "tokens_set"
	case ChangeTokensCleared:
		return "tokens_cleared"
	case ChangeViewChanged:
		return "view_changed"
	case ChangeReset:
		return "reset"
	}
	return "unknown"
}

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind  ChangeKind
	State State
}
