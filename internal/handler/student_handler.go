package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
	"github.com/noah-isme/sma-finance-mirror/pkg/response"
)

type studentService interface {
	List(ctx context.Context, query dto.StudentListQuery) ([]dto.StudentSummary, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*dto.StudentDetail, error)
}

// StudentHandler exposes student balances.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students with recomputed balances
// @Tags Students
// @Produce json
// @Param search query string false "Search by name"
// @Param classGroup query string false "Filter by class group"
// @Param status query string false "paid, partial or outstanding"
// @Param sortBy query string false "name or outstanding"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]dto.StudentSummary}
// @Failure 400 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var query dto.StudentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	students, pagination, cacheHit, err := h.students.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, students, pagination, cacheHit)
}

// Get godoc
// @Summary Student balance detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope{data=dto.StudentDetail}
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, student, nil, false)
}
