// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/volley/internal/app"
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
	"github.com/okian/volley/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Analyze runs a session synchronously.
	Analyze(ctx context.Context, s *model.Session) (*pipeline.Result, error)

	// Submit queues a session for asynchronous analysis.
	Submit(ctx context.Context, s *model.Session) (service.SubmitResult, error)

	// Read operations expose asynchronous session state.
	Session(ctx context.Context, id string) (types.SessionStatus, error)
	Sessions(ctx context.Context, limit int) ([]types.SessionStatus, error)
	DeleteSession(ctx context.Context, id string) error
}

const (
	defaultMaxBodyBytes = 64 << 20
	defaultMaxFrames    = 54000
	defaultListLimit    = 50
	maxListLimit        = 1000
)

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes limits the size of session request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMaxFrames limits the number of frames of one session.
func WithMaxFrames(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxFrames = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler

	maxBodyBytes int64
	maxFrames    int
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: defaultMaxBodyBytes,
		maxFrames:    defaultMaxFrames,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.sessionsHandler = NewSessionsHandler(deps, s.maxBodyBytes, s.maxFrames)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	h := s.sessionsHandler
	mux.HandleFunc("POST /v1/analyze", MetricsMiddleware(h.HandleAnalyze, "analyze"))
	mux.HandleFunc("POST /v1/sessions", MetricsMiddleware(h.HandleSubmit, "submit"))
	mux.HandleFunc("GET /v1/sessions", MetricsMiddleware(h.HandleList, "sessions"))
	mux.HandleFunc("GET /v1/sessions/{id}", MetricsMiddleware(h.HandleGet, "session"))
	mux.HandleFunc("DELETE /v1/sessions/{id}", MetricsMiddleware(h.HandleDelete, "session_delete"))
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	resp := errorResponse{Code: code, Message: http.StatusText(status)}
	if err != nil {
		resp.Message = err.Error()
		var invalid *invalidRequestError
		if errors.As(err, &invalid) {
			resp.Errors = invalid.fields
		}
	}
	writeJSON(w, status, resp)
}

// writeKindError maps an error kind onto its HTTP status and code.
func writeKindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// kindOf translates upstream errors into API error kinds.
func kindOf(op string, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrNilSession), errors.Is(err, pipeline.ErrInvalidFPS):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, service.ErrInProgress), errors.Is(err, service.ErrSessionChanged):
		return WrapKind(op, ErrConflict, err)
	case errors.Is(err, service.ErrNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, service.ErrBackpressure):
		return WrapKind(op, ErrBackpressure, err)
	case errors.Is(err, service.ErrNotStarted):
		return WrapKind(op, ErrUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return WrapKind(op, context.DeadlineExceeded, err)
	default:
		return WrapKind(op, ErrInternal, err)
	}
}
