package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api/health"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

func marker(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(name + ":" + r.PathValue("id")))
	})
}

func TestServerRoutes(t *testing.T) {
	log := logger.Get()
	srv := NewServer(ServerConfig{
		ServiceName: "report_generator",
		Version:     "test",
		Delivery:    marker("delivery"),
		Reports:     marker("reports"),
	}, health.New(log, "report_generator", "test"), log)

	tests := []struct {
		method, path string
		code         int
		body         string
	}{
		{http.MethodPost, "/", http.StatusOK, "delivery:"},
		{http.MethodGet, "/", http.StatusOK, `"service":"report_generator"`},
		{http.MethodGet, "/health", http.StatusOK, "OK"},
		{http.MethodGet, "/ready", http.StatusOK, `"status":"healthy"`},
		{http.MethodGet, "/reports/abc", http.StatusOK, "reports:abc"},
		{http.MethodGet, "/ws", http.StatusNotFound, ""},
		{http.MethodGet, "/unknown", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader("")))

			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestServer_SlowDeliveryIsNotCutOff(t *testing.T) {
	log := logger.Get()
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})
	stuck := health.CheckFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	srv := NewServer(ServerConfig{
		ServiceName:  "summarizer",
		RouteTimeout: 20 * time.Millisecond,
		Delivery:     slow,
	}, health.New(log, "summarizer", "test").Register("clickhouse", stuck), log)
	assert.Zero(t, srv.httpServer.WriteTimeout)

	ts := httptest.NewUnstartedServer(srv.Handler())
	ts.Config.ReadTimeout = srv.httpServer.ReadTimeout
	ts.Config.WriteTimeout = srv.httpServer.WriteTimeout
	ts.Config.IdleTimeout = srv.httpServer.IdleTimeout
	ts.Start()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "success")

	resp, err = http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
