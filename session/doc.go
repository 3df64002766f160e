// Package session holds the client-side authentication state machine and its
// durable persistence.
//
// A [Store] owns one [State]: the current view, the signed-in [User], the
// access and refresh tokens and the access token expiry. Every mutation is
// atomic, is written through to a [Storage] backend and is then announced to
// subscribers in mutation order.
//
// # Persistence
//
// The persisted subset {isAuthenticated, user, accessToken, refreshToken,
// expiresAt} is stored as a JSON object with exactly those keys under
// [StateKey]. Its schema version is inferred from the keys present. The raw
// tokens are mirrored under [AccessTokenKey] and [RefreshTokenKey]. All three
// keys are removed together when the session is cleared. The current view is
// never persisted; after rehydration it is derived from the authentication
// state.
//
// Three backends ship with the package: [MemoryStorage], [FileStorage] and
// [RedisStorage]. Storage failures are logged and swallowed so that a broken
// backend never blocks a state transition.
//
// # Architecture boundaries
//
// This package does NOT talk to the auth provider. Login, refresh and logout
// orchestration lives in the root package; this package only records the
// outcome. Token expiry math is delegated to package token.
//
// # What this package must NOT do
//
//   - Import goCinema, catalog or browse (no upward imports).
//   - Perform network calls other than through a [Storage] backend.
//   - Return persistence errors from mutations.
package session
