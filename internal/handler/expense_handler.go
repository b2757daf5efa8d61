package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/pkg/response"
)

type expenseService interface {
	Summary(ctx context.Context) (*dto.ExpenseSummary, error)
}

// ExpenseHandler lists school expenses.
type ExpenseHandler struct {
	expenses expenseService
}

// NewExpenseHandler constructs ExpenseHandler.
func NewExpenseHandler(expenses expenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// List godoc
// @Summary List expenses
// @Description Newest first. Reversed expenses are listed but excluded from the total.
// @Tags Expenses
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.ExpenseSummary}
// @Router /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	summary, err := h.expenses.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, summary, nil, false)
}
