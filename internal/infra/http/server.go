package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthCheck pings one dependency; a nil error means healthy.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Port        int
	RootText    string
	WebhookPath string
	Webhook     http.Handler
	Checks      map[string]HealthCheck
}

// Server exposes the liveness text, health, metrics and the optional Telegram webhook.
type Server struct {
	opts   Options
	server *http.Server
	log    *zerolog.Logger
}

func NewServer(opts Options, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "HTTPServer").Logger()
	s := &Server{opts: opts, log: &compLog}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(s.opts.RootText))
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if s.opts.Webhook != nil && s.opts.WebhookPath != "" {
		r.Post(s.opts.WebhookPath, s.opts.Webhook.ServeHTTP)
	}
	return r
}

// Start blocks until the server stops; a graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.opts.Checks))
	for name := range s.opts.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	result := map[string]string{}
	for _, name := range names {
		if err := s.opts.Checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			result[name] = err.Error()
			s.log.Warn().Err(err).Str("check", name).Msg("health check failed")
			continue
		}
		result[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": http.StatusText(status),
		"checks": result,
	})
}

// requestLogger logs method, route pattern and status. The webhook path embeds
// the bot token, so the raw URL is never logged.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
			if route == s.opts.WebhookPath {
				route = "webhook"
			}
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
