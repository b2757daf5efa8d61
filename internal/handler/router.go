package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-mirror/internal/middleware"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/internal/service"
	"github.com/noah-isme/sma-finance-mirror/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-finance-mirror/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-finance-mirror/pkg/middleware/requestid"
)

type mirrorState interface {
	Snapshot() *models.Snapshot
	Ready() bool
}

// RouterParams collects everything the HTTP surface is built from.
type RouterParams struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Mirror         mirrorState
	Health         HealthChecks

	Dashboard   *DashboardHandler
	Students    *StudentHandler
	Outstanding *OutstandingHandler
	Expenses    *ExpenseHandler
	Inventories *InventoryHandler
	Staff       *StaffHandler
}

// NewRouter builds the gin engine. Every API route is read-only.
func NewRouter(params RouterParams) *gin.Engine {
	prefix := "/" + strings.Trim(params.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	log := params.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(params.AllowedOrigins))
	r.Use(middleware.Metrics(params.Metrics))
	r.Use(middleware.ReadOnly(prefix))

	health := NewMetricsHandler(params.Metrics, params.Mirror, params.Health)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)
	if params.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())
	if params.Mirror != nil {
		api.Use(middleware.SnapshotMeta(params.Mirror))
	}

	if h := params.Dashboard; h != nil {
		api.GET("/dashboard", h.Summary)
		api.GET("/fees/collections", h.Collections)
	}
	if h := params.Students; h != nil {
		api.GET("/students", h.List)
		api.GET("/students/:id", h.Get)
	}
	if h := params.Outstanding; h != nil {
		api.GET("/outstanding", h.PreCalculated)
		api.GET("/outstanding/computed", h.Computed)
		api.GET("/outstanding/reconciliation", h.Reconcile)
		api.GET("/outstanding/export", h.Export)
	}
	if h := params.Expenses; h != nil {
		api.GET("/expenses", h.List)
	}
	if h := params.Inventories; h != nil {
		api.GET("/inventories", h.List)
		api.GET("/inventories/:name", h.Get)
	}
	if h := params.Staff; h != nil {
		api.GET("/staff/logs", h.Logs)
		api.GET("/staff/logs/export", h.Export)
	}
	return r
}
