// Package api exposes the minting service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mantono/flakeid/internal/mint"
	"github.com/mantono/flakeid/pkg/flake"
	"github.com/mantono/flakeid/pkg/log"
	"github.com/mantono/flakeid/pkg/version"
)

// Server routes HTTP requests to the minting service.
type Server struct {
	r    *mux.Router
	mint *mint.Service
}

// Config parameters to create a new Server.
type Config struct {
	Logger log.Logger
	Mint   *mint.Service
	// Gatherer serves /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// New creates a Server.
func New(config Config) *Server {
	srv := &Server{
		r:    mux.NewRouter(),
		mint: config.Mint,
	}

	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	srv.r.Use(
		log.HTTP(config.Logger, srv.mint.TraceID), // HTTP logging middleware.
		srv.recoverPanic,                          // convert any panic into 500 errors.
	)
	srv.r.NotFoundHandler = log.HTTP(config.Logger, srv.mint.TraceID)(http.HandlerFunc(srv.notFound))

	srv.r.HandleFunc("/v1/ids", srv.mintIDs).Methods(http.MethodGet, http.MethodPost)
	srv.r.HandleFunc("/v1/decode", srv.decodeID).Methods(http.MethodGet)
	srv.r.HandleFunc("/healthz", srv.health).Methods(http.MethodGet)
	srv.r.Handle("/version", version.Handler()).Methods(http.MethodGet)
	srv.r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return srv
}

// Handler returns the mux router used by the Server.
func (srv *Server) Handler() http.Handler { return srv.r }

type mintResponse struct {
	Node uint64   `json:"node"`
	IDs  []string `json:"ids"`
}

func (srv *Server) mintIDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count := 1
	if v := r.FormValue("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			srv.Fail(ctx, w, badRequest{fmt.Errorf("parse count %q: %w", v, err)}, "msg", "parse count")
			return
		}
		count = n
	}

	format := r.FormValue("format")
	if _, err := mint.Format(flake.Nil, format); err != nil {
		srv.Fail(ctx, w, badRequest{err}, "msg", "parse format")
		return
	}

	ids, err := srv.mint.MintN(ctx, count)
	if err != nil {
		srv.Fail(ctx, w, err, "msg", "mint ids", "count", count)
		return
	}

	resp := mintResponse{Node: srv.mint.Node(), IDs: make([]string, len(ids))}
	for i, id := range ids {
		resp.IDs[i], _ = mint.Format(id, format)
	}
	srv.writeJSON(ctx, w, http.StatusOK, resp)
}

func (srv *Server) decodeID(w http.ResponseWriter, r *http.Request) {
	// an unescaped + in a query string arrives as a space.
	raw := strings.ReplaceAll(r.FormValue("id"), " ", "+")

	fields, err := mint.Decode(raw)
	if err != nil {
		srv.Fail(r.Context(), w, err, "msg", "decode id")
		return
	}
	srv.writeJSON(r.Context(), w, http.StatusOK, fields)
}

func (srv *Server) health(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"node":   srv.mint.Node(),
	})
}

func (srv *Server) notFound(w http.ResponseWriter, r *http.Request) {
	srv.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{
		Error:   "not found",
		TraceID: log.TraceID(r.Context()),
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id"`
}

// badRequest marks errors caused by invalid client input.
type badRequest struct{ error }

func (e badRequest) Unwrap() error { return e.error }

func statusCode(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, flake.ErrInvalidEncoding),
		errors.Is(err, mint.ErrBatchSize):
		return http.StatusBadRequest
	case flake.IsRetryable(err),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as a JSON error response and logs it with keyvals.
// Client errors are logged at debug level.
func (srv *Server) Fail(ctx context.Context, w http.ResponseWriter, err error, keyvals ...interface{}) {
	code := statusCode(err)

	lvl := log.Info
	if code < http.StatusInternalServerError {
		lvl = log.Debug
	}
	lvl(log.FromContext(ctx)).Log(append([]interface{}{"err", err, "status", code}, keyvals...)...)

	if code == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	srv.writeJSON(ctx, w, code, errorResponse{
		Error:   err.Error(),
		TraceID: log.TraceID(ctx),
	})
}

func (srv *Server) writeJSON(ctx context.Context, w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Info(log.FromContext(ctx)).Log("msg", "encode response", "err", err)
	}
}

func (srv *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				srv.Fail(r.Context(), w, fmt.Errorf("panic: %v", err), "msg", "recover panic", "stack", string(debug.Stack()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
