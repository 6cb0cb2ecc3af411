package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api/health"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

const (
	defaultPort         = 8080
	defaultRouteTimeout = 10 * time.Second
)

// ServerConfig selects the routes an agent process serves. Nil handlers are
// not mounted.
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string

	// RouteTimeout bounds the health, readiness, metrics and info routes.
	// Deliveries are not bounded: a delivery runs as long as the agent's
	// model and API calls take.
	RouteTimeout time.Duration

	Delivery  http.Handler // POST /
	Dashboard http.Handler // GET /ws
	Reports   http.Handler // GET /reports/{id}
}

// Server is the agent's HTTP surface: push delivery, health checks, metrics
// and the role specific extras.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

func NewServer(cfg ServerConfig, checks *health.Handler, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	timeout := cfg.RouteTimeout
	if timeout <= 0 {
		timeout = defaultRouteTimeout
	}
	bounded := func(h http.Handler) http.Handler {
		return http.TimeoutHandler(h, timeout, "request timed out")
	}

	mux.Handle("GET /health", bounded(http.HandlerFunc(checks.HandleHealth)))
	mux.Handle("GET /ready", bounded(http.HandlerFunc(checks.HandleReadiness)))
	mux.Handle("GET /metrics", bounded(metrics.Handler()))
	mux.Handle("GET /{$}", bounded(serviceInfo(cfg.ServiceName, cfg.Version)))

	optional := []struct {
		pattern string
		handler http.Handler
	}{
		{"POST /{$}", cfg.Delivery},
		{"GET /ws", cfg.Dashboard},
		{"GET /reports/{id}", cfg.Reports},
	}
	for _, route := range optional {
		if route.handler == nil {
			continue
		}
		mux.Handle(route.pattern, route.handler)
		log.Infow("Route registered", "pattern", route.pattern)
	}

	port := cfg.Port
	if port <= 0 {
		port = defaultPort
	}

	// No WriteTimeout: it would cut slow deliveries off mid-response and the
	// push service would redeliver them.
	return &Server{
		httpServer: &http.Server{
			Addr:        ":" + strconv.Itoa(port),
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		log: log,
	}
}

func serviceInfo(name, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"service": name,
			"version": version,
			"status":  "running",
		})
	}
}

// Handler returns the router, for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.log.Infow("Starting HTTP server", "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "http server")
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Wrap(s.httpServer.Shutdown(ctx), "http server shutdown")
}
