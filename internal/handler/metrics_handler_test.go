package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tennis-lesson-scheduler/internal/service"
)

func TestMetricsHandlerEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	healthy := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
	})
	r := gin.New()
	r.GET("/health", healthy.Health)
	r.GET("/ready", healthy.Ready)
	r.GET("/metrics", healthy.Prometheus)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", nil).Code)
	w := serve(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	degraded := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	r = gin.New()
	r.GET("/ready", degraded.Ready)
	r.GET("/metrics", degraded.Prometheus)

	w = serve(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/metrics", nil).Code)
}
