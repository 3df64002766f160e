// Package token provides pure helpers for access-token lifetimes: expiry checks,
// remaining-time computation, human-readable formatting, and unverified claim
// parsing for tokens issued by the authentication provider.
//
// # Time model
//
// Expiry values are Unix timestamps in seconds. The zero value means "unknown"
// and is always treated as expired. Equality with the current second counts as
// expired.
//
// # Architecture boundaries
//
// This package owns token lifetime math only. It never verifies signatures: the
// provider is the authority for token validity, the client only needs the
// advertised expiry.
//
// # What this package must NOT do
//
//   - Perform I/O or hold state.
//   - Import goCinema, session, or catalog.
package token
