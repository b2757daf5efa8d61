package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// Stock history entry kinds.
const (
	StockHistoryRestock = "restock"
	StockHistorySale    = "sale"
)

// InventoryStats summarises the stock position of one inventory.
type InventoryStats struct {
	TotalItems    int             `json:"totalItems"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	LowStock      int             `json:"lowStockCount"`
	OutOfStock    int             `json:"outOfStockCount"`
}

// InventorySummary is an inventory row of the list endpoint.
type InventorySummary struct {
	InventoryName string         `json:"inventoryName"`
	Year          int            `json:"year"`
	CreatedAt     string         `json:"createdAt"`
	Stats         InventoryStats `json:"stats"`
}

// InventoryItemView decorates an item with its stock flags.
type InventoryItemView struct {
	ItemName     string          `json:"itemName"`
	Quantity     int             `json:"quantity"`
	DefaultPrice decimal.Decimal `json:"defaultPrice"`
	Threshold    int             `json:"threshold"`
	Value        decimal.Decimal `json:"value"`
	LowStock     bool            `json:"lowStock"`
	OutOfStock   bool            `json:"outOfStock"`
}

// StockHistoryEntry is a stock movement or a completed sale.
type StockHistoryEntry struct {
	Kind        string           `json:"type"`
	Date        string           `json:"date"`
	ItemName    string           `json:"itemName"`
	Quantity    int              `json:"quantity"`
	Value       *decimal.Decimal `json:"value"`
	Note        string           `json:"note"`
	PerformedBy string           `json:"performedBy,omitempty"`
}

// InventoryDetail is the full view of one inventory.
type InventoryDetail struct {
	InventorySummary
	Items      []InventoryItemView `json:"items"`
	Sales      []models.SaleRecord `json:"sales"`
	SalesTotal decimal.Decimal     `json:"salesTotal"`
	History    []StockHistoryEntry `json:"stockHistory"`
}
