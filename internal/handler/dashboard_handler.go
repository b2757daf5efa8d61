package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
	"github.com/noah-isme/sma-finance-mirror/pkg/response"
)

type financeService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, bool, error)
	FeeCollections(ctx context.Context) (*dto.FeeCollections, bool, error)
}

// DashboardHandler serves the finance dashboard.
type DashboardHandler struct {
	service financeService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service financeService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Finance dashboard totals
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.DashboardResponse}
// @Failure 503 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, summary, nil, cacheHit)
}

// Collections godoc
// @Summary Tuition and transport collected this month
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.FeeCollections}
// @Router /fees/collections [get]
func (h *DashboardHandler) Collections(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	collections, cacheHit, err := h.service.FeeCollections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, collections, nil, cacheHit)
}
