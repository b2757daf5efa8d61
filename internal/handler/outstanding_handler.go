package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/service"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
	"github.com/noah-isme/sma-finance-mirror/pkg/response"
)

type outstandingService interface {
	PreCalculated(ctx context.Context) (*dto.OutstandingList, error)
	Computed(ctx context.Context) (*dto.OutstandingList, bool, error)
	Reconcile(ctx context.Context) (*dto.ReconciliationReport, error)
}

type outstandingExporter interface {
	OutstandingPDF(ctx context.Context, source string) (*service.ExportFile, error)
}

// OutstandingHandler exposes outstanding balance lists.
type OutstandingHandler struct {
	outstanding outstandingService
	exporter    outstandingExporter
}

// NewOutstandingHandler constructs OutstandingHandler.
func NewOutstandingHandler(outstanding outstandingService, exporter outstandingExporter) *OutstandingHandler {
	return &OutstandingHandler{outstanding: outstanding, exporter: exporter}
}

// PreCalculated godoc
// @Summary Outstanding balances published by the desktop application
// @Tags Outstanding
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.OutstandingList}
// @Router /outstanding [get]
func (h *OutstandingHandler) PreCalculated(c *gin.Context) {
	list, err := h.outstanding.PreCalculated(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, list, nil, false)
}

// Computed godoc
// @Summary Outstanding balances recomputed from enrollment
// @Tags Outstanding
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.OutstandingList}
// @Router /outstanding/computed [get]
func (h *OutstandingHandler) Computed(c *gin.Context) {
	list, cacheHit, err := h.outstanding.Computed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, list, nil, cacheHit)
}

// Reconcile godoc
// @Summary Compare recomputed, stored and pre-calculated balances
// @Tags Outstanding
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.ReconciliationReport}
// @Router /outstanding/reconciliation [get]
func (h *OutstandingHandler) Reconcile(c *gin.Context) {
	report, err := h.outstanding.Reconcile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, report, nil, false)
}

// Export godoc
// @Summary Download outstanding balances as PDF
// @Tags Outstanding
// @Produce application/pdf
// @Param source query string false "pre-calculated (default) or computed"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /outstanding/export [get]
func (h *OutstandingHandler) Export(c *gin.Context) {
	source := c.DefaultQuery("source", service.OutstandingSourcePreCalculated)
	if source != service.OutstandingSourcePreCalculated && source != service.OutstandingSourceComputed {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "source must be pre-calculated or computed"))
		return
	}
	file, err := h.exporter.OutstandingPDF(c.Request.Context(), source)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
