package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/MrEthical07/goCinema/token"
)

// ErrIncompleteCredentials is returned by [Store.Authenticate] when either
// token is empty.
var ErrIncompleteCredentials = errors.New("access and refresh tokens are required")

const defaultWriteTimeout = 2 * time.Second

// TokenHolder is an external component that keeps its own copy of the user's
// bearer token and must drop it when the session is cleared.
type TokenHolder interface {
	ClearUserToken()
}

// Options configures a [Store].
type Options struct {
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Logger receives swallowed persistence failures. Defaults to a discard
	// logger.
	Logger *slog.Logger
	// WriteTimeout bounds each persistence call. Defaults to 2s.
	WriteTimeout time.Duration
}

// Store is the session state machine. It is safe for concurrent use.
//
// Mutations are serialized: each one updates the state, writes it through to
// storage and notifies subscribers before the next mutation starts.
// Subscribers run synchronously and must not mutate the store.
type Store struct {
	writeMu sync.Mutex

	mu    sync.RWMutex
	state State

	storage      Storage
	clock        func() time.Time
	logger       *slog.Logger
	writeTimeout time.Duration

	subMu   sync.Mutex
	subs    map[uint64]func(Change)
	nextSub uint64
	holders []TokenHolder
}

// NewStore builds a Store and rehydrates it once from storage. A missing or
// unreadable blob yields the default state. A nil storage uses a fresh
// [MemoryStorage].
func NewStore(ctx context.Context, storage Storage, opts Options) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	s := &Store{
		storage:      storage,
		clock:        opts.Clock,
		logger:       opts.Logger,
		writeTimeout: opts.WriteTimeout,
		subs:         make(map[uint64]func(Change)),
	}
	s.state = s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) State {
	st := defaultState()

	data, err := s.storage.Get(ctx, StateKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("goCinema: session rehydrate failed", "error", err)
		}
		return st
	}

	decoded, err := Decode(data)
	if err != nil {
		s.logger.Warn("goCinema: discarding unreadable session blob", "error", err)
		return st
	}

	decoded.CurrentView = ViewLogin
	if decoded.IsAuthenticated {
		decoded.CurrentView = ViewHome
	}
	return decoded
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// IsTokenExpired reports whether the access token is absent or expired.
// Expiry equal to the current second counts as expired.
func (s *Store) IsTokenExpired() bool {
	s.mu.RLock()
	exp := s.state.ExpiresAt
	s.mu.RUnlock()
	return token.IsExpiredAt(exp, s.clock())
}

// Authenticate records a successful sign-in and switches the view to home.
func (s *Store) Authenticate(user User, accessToken, refreshToken string, expiresAt int64) error {
	if accessToken == "" || refreshToken == "" {
		return ErrIncompleteCredentials
	}
	u := user.clone()
	s.mutate(ChangeAuthenticated, true, func(st *State) bool {
		*st = State{
			CurrentView:     ViewHome,
			IsAuthenticated: true,
			User:            u,
			AccessToken:     accessToken,
			RefreshToken:    refreshToken,
			ExpiresAt:       expiresAt,
		}
		return true
	})
	return nil
}

// ClearAuthentication resets the session to defaults, removes every persisted
// key and drops the bearer token held by attached TokenHolders.
func (s *Store) ClearAuthentication() {
	s.mutate(ChangeCleared, true, func(st *State) bool {
		*st = defaultState()
		return true
	})
}

// Reset restores defaults. It is equivalent to ClearAuthentication but
// reported as [ChangeReset].
func (s *Store) Reset() {
	s.mutate(ChangeReset, true, func(st *State) bool {
		*st = defaultState()
		return true
	})
}

// UpdateUser merges patch into the current user. It is a silent no-op when no
// user is signed in.
func (s *Store) UpdateUser(patch UserPatch) {
	s.mutate(ChangeUserUpdated, true, func(st *State) bool {
		if st.User == nil {
			return false
		}
		u := st.User.clone()
		patch.applyTo(u)
		st.User = u
		return true
	})
}

// SetTokens replaces both tokens and the expiry. IsAuthenticated is
// recomputed from the user and tokens.
func (s *Store) SetTokens(accessToken, refreshToken string, expiresAt int64) {
	s.mutate(ChangeTokensSet, true, func(st *State) bool {
		st.AccessToken = accessToken
		st.RefreshToken = refreshToken
		st.ExpiresAt = expiresAt
		st.IsAuthenticated = st.authenticated()
		return true
	})
}

// ClearTokens drops both tokens and the expiry but keeps the user and view.
func (s *Store) ClearTokens() {
	s.mutate(ChangeTokensCleared, true, func(st *State) bool {
		st.AccessToken = ""
		st.RefreshToken = ""
		st.ExpiresAt = 0
		st.IsAuthenticated = false
		return true
	})
}

// SetCurrentView changes the routing intent unconditionally. Views are not
// persisted.
func (s *Store) SetCurrentView(view View) {
	s.mutate(ChangeViewChanged, false, func(st *State) bool {
		if st.CurrentView == view {
			return false
		}
		st.CurrentView = view
		return true
	})
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// AttachTokenHolder registers h to be cleared alongside the session.
func (s *Store) AttachTokenHolder(h TokenHolder) {
	if h == nil {
		return
	}
	s.subMu.Lock()
	s.holders = append(s.holders, h)
	s.subMu.Unlock()
}

func (s *Store) mutate(kind ChangeKind, persist bool, apply func(*State) bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.state.clone()
	if !apply(&next) {
		s.mu.Unlock()
		return
	}
	s.state = next
	snapshot := next.clone()
	s.mu.Unlock()

	cleared := kind == ChangeCleared || kind == ChangeReset
	if persist {
		s.persist(snapshot, cleared)
	}
	if cleared {
		s.clearHolders()
	}
	s.notify(Change{Kind: kind, State: snapshot})
}

func (s *Store) persist(st State, cleared bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if cleared {
		for _, key := range []string{StateKey, AccessTokenKey, RefreshTokenKey} {
			if err := s.storage.Delete(ctx, key); err != nil {
				s.logger.Warn("goCinema: session key delete failed", "key", key, "error", err)
			}
		}
		return
	}

	blob, err := Encode(st)
	if err != nil {
		s.logger.Warn("goCinema: session encode failed", "error", err)
		return
	}
	if err := s.storage.Set(ctx, StateKey, blob); err != nil {
		s.logger.Warn("goCinema: session write failed", "key", StateKey, "error", err)
	}
	s.writeRaw(ctx, AccessTokenKey, st.AccessToken)
	s.writeRaw(ctx, RefreshTokenKey, st.RefreshToken)
}

func (s *Store) writeRaw(ctx context.Context, key, value string) {
	var err error
	if value == "" {
		err = s.storage.Delete(ctx, key)
	} else {
		err = s.storage.Set(ctx, key, []byte(value))
	}
	if err != nil {
		s.logger.Warn("goCinema: session key write failed", "key", key, "error", err)
	}
}

func (s *Store) clearHolders() {
	s.subMu.Lock()
	holders := append([]TokenHolder(nil), s.holders...)
	s.subMu.Unlock()
	for _, h := range holders {
		h.ClearUserToken()
	}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}
