package log

import (
	"context"
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// TraceID returns the id of the request handled with ctx.
// Trace ids show up in logs and error responses so that a failure reported
// to a client can be found in the logs.
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey).(string); ok {
		return v
	}
	return newULID()
}

// NewTraceContext returns a context carrying traceID.
func NewTraceContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

// newULID is used when no trace id source was configured.
func newULID() string { return ulid.MustNew(ulid.Now(), rand.Reader).String() }
