// Package http exposes an engine over HTTP.
//
//	GET  /health            liveness
//	GET  /info              name and version
//	GET  /scripts           list of script ids
//	GET  /render/{id...}    render id, query parameters become variables
//	POST /render/{id...}    render id, JSON body {"vars": {...}}
//	GET  /events            SSE stream of changed script ids (hot reload)
//	GET  /metrics           when configured with WithMetrics
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Engine defines what the server needs from the tendril engine.
type Engine interface {
	Render(ctx context.Context, id string, vars map[string]any) (string, error)
	List(ctx context.Context) ([]string, error)
	Watch(ctx context.Context) (<-chan string, error)
}

var _ Engine = (*tendril.Engine)(nil)

// RenderRequest is the body of POST /render/{id}.
type RenderRequest struct {
	Vars map[string]any `json:"vars"`
}

// RenderResponse is returned when the client asks for JSON.
type RenderResponse struct {
	ID     string `json:"id"`
	Output string `json:"output"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Trace string `json:"trace,omitempty"`
}

// Server serves an Engine.
type Server struct {
	Engine  Engine
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine: engine,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/scripts", server.ListScripts)
	r.Get("/render/*", server.Render)
	r.Post("/render/*", server.Render)
	r.Get("/events", server.SubscribeEvents)
	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Render handles GET and POST /render/{id}.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing script id"})
		return
	}

	vars := make(map[string]any)
	asJSON := wantsJSON(r)
	switch r.Method {
	case http.MethodPost:
		var body RenderRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			s.Logger.Warn("Render: Invalid request body", "error", err)
			return
		}
		for k, v := range body.Vars {
			vars[k] = v
		}
	default:
		for k, v := range r.URL.Query() {
			if k == "format" || len(v) == 0 {
				continue
			}
			vars[k] = v[0]
		}
	}

	out, err := s.Engine.Render(r.Context(), id, vars)
	if err != nil {
		status, resp := errorResponse(err)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("Render failed", "script", id, "error", err)
		} else {
			s.Logger.Warn("Render rejected", "script", id, "error", err)
		}
		writeJSON(w, status, resp)
		return
	}

	if asJSON {
		writeJSON(w, http.StatusOK, RenderResponse{ID: id, Output: out})
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if _, err := w.Write([]byte(out)); err != nil {
		s.Logger.Error("Render response write failed", "error", err)
	}
}

// ListScripts handles GET /scripts.
func (s *Server) ListScripts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "tendril-http",
		"version": strings.TrimSpace(tendril.Version),
	})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.Logger.Info("SSE: Subscribing to hot reload")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected")
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func errorResponse(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Error: err.Error()}
	resp.Trace, _ = domain.TraceOf(err)

	var (
		parseErr      *domain.ParseError
		attrErr       *domain.AttributeError
		missingErr    *domain.MissingAttributeError
		unresolvedErr *domain.UnresolvedTagError
		tagErr        *domain.TagError
	)
	switch {
	case errors.Is(err, ports.ErrResourceNotFound) && !errors.As(err, &tagErr):
		resp.Kind = "not_found"
		return http.StatusNotFound, resp
	case errors.Is(err, context.DeadlineExceeded):
		resp.Kind = "timeout"
		return http.StatusGatewayTimeout, resp
	case errors.As(err, &parseErr):
		resp.Kind = "parse"
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &attrErr), errors.As(err, &missingErr):
		resp.Kind = "attribute"
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &unresolvedErr):
		resp.Kind = "unresolved_tag"
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &tagErr):
		resp.Kind = "tag"
	}
	return http.StatusInternalServerError, resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
