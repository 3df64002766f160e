package goCinema

import (
	"io"

	"github.com/MrEthical07/goCinema/catalog"
	"github.com/MrEthical07/goCinema/internal/authapi"
	"github.com/MrEthical07/goCinema/internal/events"
	"github.com/MrEthical07/goCinema/internal/flows"
	"github.com/MrEthical07/goCinema/session"
)

// AuthError is the auth provider's rejection, returned verbatim by Login,
// Signup, Logout and RefreshSession. Inspect it with errors.As.
type AuthError = authapi.Error

// CatalogError is a non-2xx catalog response. Inspect it with errors.As.
type CatalogError = catalog.Error

// SignupInput is the registration form. Email and Password are required and
// ConfirmPassword must equal Password. Name defaults to "FirstName LastName".
type SignupInput = flows.SignupInput

// AuthResult is returned by [Engine.Login], [Engine.Signup] and
// [Engine.RefreshSession].
type AuthResult struct {
	User         *session.User
	AccessToken  string
	RefreshToken string
	// ExpiresAt is Unix seconds; 0 when the provider gave no usable expiry.
	ExpiresAt int64
	// ConfirmationRequired is set by Signup when the provider created the
	// account but issued no tokens (email confirmation pending). The session
	// is untouched in that case.
	ConfirmationRequired bool
}

// TokenStatus describes the access token held by the session.
type TokenStatus struct {
	Authenticated bool
	Expired       bool
	// Remaining is whole seconds until expiry, never negative.
	Remaining int64
	// Display is Remaining rendered by token.FormatRemaining.
	Display string
}

/*
====================================
EVENTS
====================================
*/

// Event is a session lifecycle record delivered to the configured [EventSink].
type Event = events.Event

// EventSink receives events from the engine's background dispatcher.
type EventSink = events.Sink

// NoOpSink drops every event.
type NoOpSink = events.NoOpSink

// ChannelSink buffers events in a channel readable through Events().
type ChannelSink = events.ChannelSink

// JSONWriterSink writes one JSON object per event and line.
type JSONWriterSink = events.JSONWriterSink

// EventStats counts dispatched events per kind name.
type EventStats struct {
	Delivered map[string]uint64
	Dropped   map[string]uint64
}

// EventKind names the session transition an [Event] records. It encodes by
// name ("login", "session_expired", ...) in JSON.
type EventKind = events.Kind

// Event kinds. EventLogout and EventSessionExpiry are terminal: the
// dispatcher never drops them for a full buffer.
const (
	EventLogin         = events.KindLogin
	EventSignup        = events.KindSignup
	EventLogout        = events.KindLogout
	EventRefresh       = events.KindRefresh
	EventSessionExpiry = events.KindSessionExpiry
)

// NewChannelSink describes the newchannelsink operation and its observable behavior.
//
// NewChannelSink returns a sink whose channel holds up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	return events.NewChannelSink(buffer)
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
//
// NewJSONWriterSink returns a sink writing to w. Writes are serialized.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return events.NewJSONWriterSink(w)
}
