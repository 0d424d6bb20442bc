package log

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
)

// TraceHeader is the response header carrying the trace id of a request.
const TraceHeader = "X-Trace-Id"

// HTTP returns an HTTP logging middleware using the provided base logger.
// newTraceID mints the trace id of each request; when nil, ULIDs are used.
func HTTP(l Logger, newTraceID func() string) func(http.Handler) http.Handler {
	if newTraceID == nil {
		newTraceID = newULID
	}
	return handler{logger: l, newTraceID: newTraceID}.decorate
}

type handler struct {
	logger     Logger
	newTraceID func() string
}

func (h handler) decorate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := h.newTraceID()
		if traceID == "" {
			traceID = newULID()
		}
		ctx := NewTraceContext(r.Context(), traceID)
		ctx = NewContext(ctx, h.logger)
		w.Header().Set(TraceHeader, traceID)

		// https://github.com/felixge/httpsnoop#why-this-package-exists
		m := httpsnoop.CaptureMetrics(next, w, r.WithContext(ctx))
		logRequest(ctx, m.Code, m.Duration, r)
	})
}

func logRequest(ctx context.Context, code int, took time.Duration, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}

	keyvals := []interface{}{
		"method", r.Method,
		"status", code,
		"path", uri,
		"host", host,
		"user_agent", r.UserAgent(),
		"took", took,
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		keyvals = append(keyvals, "x_forwarded_for", fwd)
	}

	logger := FromContext(ctx)
	if code >= 500 {
		Info(logger).Log(keyvals...)
		return
	}
	Debug(logger).Log(keyvals...)
}
