// Package http exposes the navigator over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mygenetics/reportnav"
	"github.com/mygenetics/reportnav/internal/presentation/graph"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/observability"
	"github.com/mygenetics/reportnav/pkg/transition"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// MaxBodyBytes limits the size of request bodies.
const MaxBodyBytes = 64 << 10

// Bot defines what the HTTP adapter needs from the navigator.
type Bot interface {
	Handle(ctx context.Context, in domain.Inbound) (*reportnav.Reply, error)
	Current(ctx context.Context, userID string) (*reportnav.Reply, error)
	Session(ctx context.Context, userID string) (*domain.Session, error)
	Reset(ctx context.Context, userID string) error
	Table() *transition.Table
}

// ActionRequest is the body of POST /v1/users/{userID}/actions.
// Data carries the callback data of a pressed button; Action names an action
// directly; Text submits a free-text message.
type ActionRequest struct {
	Action string `json:"action,omitempty"`
	Text   string `json:"text,omitempty"`
	Data   string `json:"data,omitempty"`
}

// GraphResponse is the body of GET /v1/graph.
type GraphResponse struct {
	Entry   domain.ScreenID   `json:"entry"`
	Screens []domain.Screen   `json:"screens"`
	Edges   []transition.Edge `json:"edges"`
}

// Server serves the navigator API.
type Server struct {
	Bot     Bot
	Metrics *observability.Metrics
	Logger  zerolog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics exposes m on GET /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// NewHandler creates a new HTTP handler for the bot.
func NewHandler(bot Bot, opts ...Option) http.Handler {
	s := &Server{Bot: bot, Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.Logger))
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.GetGraph)
		r.Get("/graph/mermaid", s.GetMermaid)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/actions", s.PostAction)
			r.Get("/screen", s.GetScreen)
			r.Get("/session", s.GetSession)
			r.Delete("/session", s.DeleteSession)
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// PostAction handles POST /v1/users/{userID}/actions.
func (s *Server) PostAction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var body ActionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.error(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	in, err := body.Inbound(userID)
	if err != nil {
		s.error(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	reply, err := s.Bot.Handle(r.Context(), in)
	if errors.Is(err, reportnav.ErrInvalidEvent) {
		s.error(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err != nil {
		s.error(w, r, http.StatusInternalServerError, "action failed", err)
		return
	}
	writeJSON(w, replyStatus(reply), reply)
}

// Inbound converts the request into a domain event for userID.
func (a ActionRequest) Inbound(userID string) (domain.Inbound, error) {
	in := domain.Inbound{UserID: userID}

	switch {
	case a.Data != "":
		origin, label, err := domain.DecodeCallback(a.Data)
		if err != nil {
			return in, err
		}
		in.Origin, in.Label = origin, label
	case a.Action != "":
		in.Label = domain.ActionLabel(strings.TrimSpace(a.Action))
	case a.Text != "":
		in.Label = domain.ActionFreeText
	default:
		return in, fmt.Errorf("one of action, data or text is required")
	}
	in.Text = a.Text
	return in, nil
}

func replyStatus(reply *reportnav.Reply) int {
	switch {
	case reply.Degraded:
		return http.StatusServiceUnavailable
	case reply.Outcome == domain.OutcomeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusOK
}

// GetScreen handles GET /v1/users/{userID}/screen.
func (s *Server) GetScreen(w http.ResponseWriter, r *http.Request) {
	reply, err := s.Bot.Current(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.error(w, r, http.StatusInternalServerError, "render failed", err)
		return
	}
	writeJSON(w, replyStatus(reply), reply)
}

// GetSession handles GET /v1/users/{userID}/session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Bot.Session(r.Context(), chi.URLParam(r, "userID"))
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.error(w, r, http.StatusNotFound, "session not found", err)
	case err != nil:
		s.error(w, r, http.StatusServiceUnavailable, "session store unavailable", err)
	default:
		writeJSON(w, http.StatusOK, sess)
	}
}

// DeleteSession handles DELETE /v1/users/{userID}/session.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Bot.Reset(r.Context(), chi.URLParam(r, "userID")); err != nil {
		s.error(w, r, http.StatusServiceUnavailable, "session store unavailable", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /v1/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	table := s.Bot.Table()
	writeJSON(w, http.StatusOK, GraphResponse{
		Entry:   table.Entry(),
		Screens: table.Registry().Screens(),
		Edges:   table.Edges(),
	})
}

// GetMermaid handles GET /v1/graph/mermaid.
// With ?user=ID the user's position and breadcrumb are highlighted.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if userID := r.URL.Query().Get("user"); userID != "" {
		sess, err := s.Bot.Session(r.Context(), userID)
		switch {
		case err == nil:
			overlay = graph.OverlayFor(sess)
		case !errors.Is(err, domain.ErrSessionNotFound):
			s.error(w, r, http.StatusServiceUnavailable, "session store unavailable", err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.Bot.Table(), overlay)))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "reportnav",
		"version": strings.TrimSpace(reportnav.Version),
	})
}

func (s *Server) error(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	ev := s.Logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.Logger.Error()
	}
	ev.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("user_id", chi.URLParam(r, "userID")).
		Int("status", status).
		Msg(msg)
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
