// Package events implements async delivery of session lifecycle events.
//
// # Components
//
//   - [Sink] receives events (channel, JSON writer, no-op).
//   - [Kind] names the transition. Logout and session expiry are terminal.
//   - [Dispatcher] is a single-worker relay. With DropIfFull it drops
//     non-terminal events on a full buffer; terminal events always wait for
//     room until the caller's context ends. It counts delivered and dropped
//     events per kind.
//   - [Event] is the record. Its kind is encoded by name as "event_type".
//
// # Architecture boundaries
//
// This package owns buffering and sink delivery. It does NOT decide which
// events to emit; the Engine and the flow functions do.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goCinema or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package events
