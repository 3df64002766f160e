// Package requestid carries request correlation ids on outgoing HTTP calls.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is the HTTP header used for correlation ids.
const Header = "X-Request-Id"

type ctxKey struct{}

// With returns a context carrying id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the id stored in ctx, if any.
func From(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Ensure returns the id stored in ctx or a fresh UUIDv4.
func Ensure(ctx context.Context) string {
	if id, ok := From(ctx); ok {
		return id
	}
	return uuid.NewString()
}

// Apply sets the correlation header on req and returns the id used.
func Apply(req *http.Request) string {
	id := Ensure(req.Context())
	req.Header.Set(Header, id)
	return id
}
