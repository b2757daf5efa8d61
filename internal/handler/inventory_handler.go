package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
	"github.com/noah-isme/sma-finance-mirror/pkg/response"
)

type inventoryService interface {
	List(ctx context.Context) ([]dto.InventorySummary, error)
	Get(ctx context.Context, name string, year int) (*dto.InventoryDetail, error)
}

// InventoryHandler exposes inventory stock views.
type InventoryHandler struct {
	inventories inventoryService
}

// NewInventoryHandler constructs InventoryHandler.
func NewInventoryHandler(inventories inventoryService) *InventoryHandler {
	return &InventoryHandler{inventories: inventories}
}

// List godoc
// @Summary List inventories with stock statistics
// @Tags Inventory
// @Produce json
// @Success 200 {object} response.Envelope{data=[]dto.InventorySummary}
// @Router /inventories [get]
func (h *InventoryHandler) List(c *gin.Context) {
	list, err := h.inventories.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, list, nil, false)
}

// Get godoc
// @Summary Inventory detail with sales and stock history
// @Tags Inventory
// @Produce json
// @Param name path string true "Inventory name"
// @Param year query int false "Inventory year, latest when omitted"
// @Success 200 {object} response.Envelope{data=dto.InventoryDetail}
// @Failure 404 {object} response.Envelope
// @Router /inventories/{name} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a positive number"))
			return
		}
		year = parsed
	}
	detail, err := h.inventories.Get(c.Request.Context(), c.Param("name"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, detail, nil, false)
}
