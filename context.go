package goCinema

import (
	"context"

	"github.com/MrEthical07/goCinema/internal/requestid"
)

// WithRequestID attaches a correlation id to ctx. Engine and catalog calls
// made with ctx send it as the X-Request-Id header and stamp it on emitted
// events. Calls without one get a fresh random id per request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return requestid.With(ctx, id)
}

// RequestIDFromContext returns the id attached by [WithRequestID].
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return requestid.From(ctx)
}
