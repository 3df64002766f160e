// Package browse coordinates debounced search and incremental pagination
// over the movie catalog and exposes one list for a presentation layer.
//
// A [Coordinator] is in browse mode while its debounced query is empty and
// in search mode otherwise. Browse mode accumulates popular-movie pages as
// [Coordinator.LoadMore] is called; search mode shows the first page of
// results for the committed query.
//
// # Debounce
//
// Raw query edits are committed after a quiet period (500ms by default).
// Each edit cancels the pending commit and starts a new one. The committed
// value is trimmed, and committing an unchanged value does nothing.
//
// # Stale completions
//
// Every fetch carries a sequence number. A completion is applied only if it
// is still the latest fetch of its kind and still matches the current mode,
// page or query; anything else is dropped silently.
//
// # Architecture boundaries
//
// The coordinator depends on a [Fetcher], not on a concrete HTTP client, and
// never touches session state.
package browse
