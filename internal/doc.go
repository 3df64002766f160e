// Package internal holds goCinema's private building blocks.
//
// # Sub-packages
//
//   - authapi — HTTP client for the auth provider's /auth/v1 endpoints
//   - events — async event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function orchestrators for login, signup, logout and refresh
//   - requestid — correlation ids for outgoing HTTP requests
//
// # What this package must NOT do
//
//   - Export types that appear in the public goCinema API other than through
//     aliases in the root package.
//   - Be imported by any package outside the goCinema module.
package internal
