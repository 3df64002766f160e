// Package authapi is the HTTP client for the hosted auth provider's
// /auth/v1 endpoints.
//
// Requests authenticate with the project's public API key. Logout is the one
// call made with the user's own bearer token. The client also keeps a copy
// of the current user token so the session store can clear it alongside the
// session.
//
// # Architecture boundaries
//
// This package returns provider responses verbatim. It never mutates session
// state and never retries.
package authapi
