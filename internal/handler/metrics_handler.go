package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/service"
)

type readiness interface {
	Ready() bool
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecks are the backends reported by the health endpoint. A nil
// check is reported as disabled.
type HealthChecks struct {
	Database Pinger
	Cache    Pinger
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	mirror  readiness
	checks  HealthChecks
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, mirror readiness, checks HealthChecks) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, mirror: mirror, checks: checks}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with process level statistics for liveness checks. Backend
// failures are reported without failing the check.
func (h *MetricsHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": pingState(ctx, h.checks.Database),
		"cache":    pingState(ctx, h.checks.Cache),
		"metrics":  h.metrics.Snapshot(),
	})
}

func pingState(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

// Ready reports 503 until every mirrored collection has been loaded once.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.mirror == nil || !h.mirror.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
