package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Checker is a dependency checked by the readiness endpoint
type Checker interface {
	Health(ctx context.Context) error
}

// CheckFunc adapts a function to Checker
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Health(ctx context.Context) error { return f(ctx) }

type namedCheck struct {
	name    string
	checker Checker
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	readinessTimeout = 5 * time.Second
)

// Handler serves the liveness and readiness endpoints
type Handler struct {
	log     *logger.Logger
	checks  []namedCheck
	started time.Time
	service string
	version string
}

func New(log *logger.Logger, service, version string) *Handler {
	return &Handler{log: log, started: time.Now(), service: service, version: version}
}

// Register adds a readiness check. Call it before the server starts.
func (h *Handler) Register(name string, checker Checker) *Handler {
	h.checks = append(h.checks, namedCheck{name: name, checker: checker})
	return h
}

// HealthStatus is the /ready response body
type HealthStatus struct {
	Status    string                     `json:"status"`
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleHealth answers 200 while the process is up. Dependencies are not checked.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

// HandleReadiness runs every registered check and answers 503 if any fails
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	body := HealthStatus{
		Status:    statusHealthy,
		Service:   h.service,
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]ComponentHealth, len(h.checks)),
	}

	for _, c := range h.checks {
		result := runCheck(ctx, c.checker)
		body.Checks[c.name] = result
		if result.Status != statusHealthy {
			body.Status = statusUnhealthy
			h.log.Warnw("Readiness check failed", "check", c.name, "error", result.Error)
		}
	}

	code := http.StatusOK
	if body.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func runCheck(ctx context.Context, checker Checker) ComponentHealth {
	start := time.Now()
	err := checker.Health(ctx)
	result := ComponentHealth{Status: statusHealthy, ResponseTime: time.Since(start).String()}
	if err != nil {
		result.Status = statusUnhealthy
		result.Error = err.Error()
	}
	return result
}
