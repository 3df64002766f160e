// Package flows contains pure-function orchestrators for every Engine
// session operation.
//
// Each flow function (RunLogin, RunSignup, RunLogout, RunRefresh,
// RunEnsureFresh) accepts a typed dependency struct and returns results
// without side effects beyond those dependencies. Flows are unit tested with
// fake providers and an in-memory session store, and the Engine stays thin.
//
// # Architecture boundaries
//
// Flow functions coordinate the auth provider client, the session store, the
// event dispatcher and metrics. They do NOT own any of these resources;
// ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goCinema (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency interfaces.
package flows
