package log

import (
	"context"
)

type key int

const (
	loggerKey key = iota
	traceKey
)

// NewContext returns a context carrying logger.
func NewContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithDefault returns ctx if it already carries a logger, otherwise a
// context carrying logger.
func WithDefault(ctx context.Context, logger Logger) context.Context {
	if _, ok := ctx.Value(loggerKey).(Logger); ok {
		return ctx
	}
	return NewContext(ctx, logger)
}

// FromContext returns the logger stored in ctx, tagged with the trace id of
// the request if there is one. A context without a logger yields a no-op
// logger.
func FromContext(ctx context.Context) Logger {
	v, ok := ctx.Value(loggerKey).(Logger)
	if !ok {
		return Nop()
	}
	if traceID, ok := ctx.Value(traceKey).(string); ok {
		return With(v, "trace_id", traceID)
	}
	return v
}
