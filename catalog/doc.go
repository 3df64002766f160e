// Package catalog is a read-only client for the movie metadata API with a
// time-expiring response cache in front of it.
//
// # Cache
//
// Responses are cached by their exact endpoint path, query string included,
// so page 1 and page 2 of the same listing are independent entries. An entry
// is served while now-storedAt < TTL and is removed lazily on the next lookup
// after that. Failed requests are never cached. The cache is bounded by
// [Config.MaxEntries] with least-recently-used eviction.
//
// Cached values are raw JSON bodies; each hit decodes into the caller's value,
// so callers never share mutable results.
//
// # Concurrency
//
// A [Client] is safe for concurrent use. By default two concurrent misses for
// the same path both reach the network and the last response wins. Setting
// [Config.CoalesceRequests] collapses them into one request.
//
// # Architecture boundaries
//
// Catalog calls authenticate only with the API key query parameter. This
// package never sees the user's bearer token and does not import session.
package catalog
