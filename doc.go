// Package goCinema is a client library for signing in to a hosted auth
// provider and browsing a paginated, searchable movie catalog, with the
// session persisted across process restarts.
//
// The package is designed for concurrent use: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goCinema is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, TokenStatus, MetricsSnapshot, Event). The
// session state machine lives in package session, the cached catalog client in
// package catalog and the debounced browse/search coordinator in package
// browse. Flow orchestration, the auth provider client and event dispatch live
// under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Render UI or route between screens. Callers read session.State.CurrentView
//     and browse.View and draw them however they like.
//   - Perform I/O outside of Engine methods, except the one-time session
//     rehydration in [Builder.Build].
//   - Import any sub-package that re-imports goCinema (no import cycles).
//
// # Failure contract
//
// Provider errors reach the caller verbatim as [*AuthError] or
// [*CatalogError]. Local signup validation fails with [*ValidationError]
// before any network call. Session persistence failures are logged and
// swallowed; in-memory state stays authoritative.
package goCinema
