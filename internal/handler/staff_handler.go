package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/service"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
	"github.com/noah-isme/sma-finance-mirror/pkg/response"
)

type staffService interface {
	Logs(ctx context.Context, query dto.StaffLogQuery) (*dto.StaffLogReport, error)
}

type staffExporter interface {
	StaffLogCSV(ctx context.Context, query dto.StaffLogQuery) (*service.ExportFile, error)
}

// StaffHandler exposes staff attendance.
type StaffHandler struct {
	staff    staffService
	exporter staffExporter
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(staff staffService, exporter staffExporter) *StaffHandler {
	return &StaffHandler{staff: staff, exporter: exporter}
}

// Logs godoc
// @Summary Staff attendance for one day
// @Tags Staff
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), today when omitted"
// @Param search query string false "Search name, duties and notes"
// @Param role query string false "Filter by role"
// @Param staffId query string false "Filter by staff member"
// @Success 200 {object} response.Envelope{data=dto.StaffLogReport}
// @Failure 400 {object} response.Envelope
// @Router /staff/logs [get]
func (h *StaffHandler) Logs(c *gin.Context) {
	query, ok := bindStaffQuery(c)
	if !ok {
		return
	}
	report, err := h.staff.Logs(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, report, nil, false)
}

// Export godoc
// @Summary Download staff attendance as CSV
// @Tags Staff
// @Produce text/csv
// @Param date query string false "Date (YYYY-MM-DD), today when omitted"
// @Param search query string false "Search name, duties and notes"
// @Param role query string false "Filter by role"
// @Param staffId query string false "Filter by staff member"
// @Success 200 {file} binary
// @Router /staff/logs/export [get]
func (h *StaffHandler) Export(c *gin.Context) {
	query, ok := bindStaffQuery(c)
	if !ok {
		return
	}
	file, err := h.exporter.StaffLogCSV(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

func bindStaffQuery(c *gin.Context) (dto.StaffLogQuery, bool) {
	var query dto.StaffLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return query, false
	}
	return query, true
}
