package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentSchemaVersion is the shape written by [Encode]. The blob carries no
// version field: a top-level expiresAt key (null included) marks version 2,
// its absence marks version 1.
const CurrentSchemaVersion = 2

const (
	schemaVersionV1      = 1
	schemaVersionWrapper = 0
)

var (
	// ErrUnsupportedSchema is returned by [Decode] for unknown blob versions.
	ErrUnsupportedSchema = errors.New("unsupported session schema version")
	// ErrCorruptBlob is returned by [Decode] when the blob is not valid JSON.
	ErrCorruptBlob = errors.New("corrupt session blob")
)

// persisted is the on-disk shape. Absent tokens are written as null.
type persisted struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	User            *User   `json:"user"`
	AccessToken     *string `json:"accessToken"`
	RefreshToken    *string `json:"refreshToken"`
	ExpiresAt       *int64  `json:"expiresAt"`
}

// envelope detects the legacy {"state": {...}, "version": 0} wrapper and the
// explicit version field written by earlier builds.
type envelope struct {
	State     json.RawMessage `json:"state"`
	Version   *int            `json:"version"`
	ExpiresAt json.RawMessage `json:"expiresAt"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Encode serializes the persisted subset of st. CurrentView is not written.
func Encode(st State) ([]byte, error) {
	p := persisted{
		IsAuthenticated: st.IsAuthenticated,
		User:            st.User,
		AccessToken:     nullable(st.AccessToken),
		RefreshToken:    nullable(st.RefreshToken),
	}
	if st.ExpiresAt != 0 {
		exp := st.ExpiresAt
		p.ExpiresAt = &exp
	}
	return json.Marshal(p)
}

// Decode parses a persisted blob of any supported version and migrates it to
// the current shape. The returned State has CurrentView unset and
// IsAuthenticated recomputed from the user and tokens.
func Decode(data []byte) (State, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return State{}, ErrCorruptBlob
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return State{}, errors.Join(ErrCorruptBlob, err)
	}

	version := schemaVersionV1
	if env.ExpiresAt != nil {
		version = CurrentSchemaVersion
	}
	if env.Version != nil {
		version = *env.Version
	}

	body := data
	if len(env.State) > 0 && !bytes.Equal(env.State, []byte("null")) {
		if env.Version != nil && *env.Version != schemaVersionWrapper {
			return State{}, fmt.Errorf("%w: wrapper version %d", ErrUnsupportedSchema, *env.Version)
		}
		body = env.State
		version = schemaVersionV1
	}

	switch version {
	case CurrentSchemaVersion, schemaVersionV1:
	default:
		return State{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, version)
	}

	var p persisted
	if err := json.Unmarshal(body, &p); err != nil {
		return State{}, errors.Join(ErrCorruptBlob, err)
	}

	st := State{
		User:         p.User,
		AccessToken:  deref(p.AccessToken),
		RefreshToken: deref(p.RefreshToken),
	}
	// Version 1 never recorded expiry; the token is treated as expired.
	if version == CurrentSchemaVersion && p.ExpiresAt != nil {
		st.ExpiresAt = *p.ExpiresAt
	}
	st.IsAuthenticated = st.authenticated()
	return st, nil
}
