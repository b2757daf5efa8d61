package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Stock movement kinds recorded by the desktop inventory module.
const (
	StockActionInitial    = "Initial Stock"
	StockActionRestock    = "Restock"
	StockActionCorrection = "Correction"

	SaleStatusCompleted = "completed"
	SaleStatusReversed  = "reversed"
)

// Inventory groups stock items for one school year.
type Inventory struct {
	InventoryName string          `json:"inventoryName"`
	CreatedAt     string          `json:"createdAt"`
	Year          int             `json:"year"`
	Items         []InventoryItem `json:"items"`
}

type InventoryItem struct {
	ItemName          string          `json:"itemName"`
	Quantity          int             `json:"quantity"`
	DefaultPrice      decimal.Decimal `json:"defaultPrice"`
	LowStockThreshold *int            `json:"lowStockThreshold,omitempty"`
	StockLog          []StockLogEntry `json:"stockLog"`
}

type StockLogEntry struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	QuantityChange int    `json:"quantityChange"`
	ActionType     string `json:"actionType"`
	Notes          string `json:"notes,omitempty"`
	PerformedBy    string `json:"performedBy,omitempty"`
	Year           int    `json:"year"`
}

// SaleRecord is a point-of-sale entry against an inventory item.
type SaleRecord struct {
	ID             string          `json:"id"`
	InventoryName  string          `json:"inventoryName"`
	ItemName       string          `json:"itemName"`
	QuantitySold   int             `json:"quantitySold"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Total          decimal.Decimal `json:"total"`
	SoldAt         string          `json:"soldAt"`
	SoldBy         string          `json:"soldBy"`
	Year           int             `json:"year"`
	Status         string          `json:"status"`
	ReversedAt     string          `json:"reversedAt,omitempty"`
	ReversedBy     string          `json:"reversedBy,omitempty"`
	ReversalReason string          `json:"reversalReason,omitempty"`
}

func (inv *Inventory) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*inv = Inventory{
		InventoryName: doc.str("inventoryName", "name"),
		CreatedAt:     doc.date("createdAt"),
		Year:          doc.integer("year"),
	}
	for _, raw := range doc.array("items") {
		var item InventoryItem
		if err := json.Unmarshal(raw, &item); err == nil {
			inv.Items = append(inv.Items, item)
		}
	}
	return nil
}

func (item *InventoryItem) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*item = InventoryItem{
		ItemName:     doc.str("itemName"),
		Quantity:     doc.integer("quantity"),
		DefaultPrice: doc.amount("defaultPrice"),
	}
	if threshold, ok := doc.optionalInt("lowStockThreshold"); ok {
		item.LowStockThreshold = &threshold
	}
	for _, raw := range doc.array("stockLog") {
		entryDoc, err := decodeDoc(raw)
		if err != nil {
			continue
		}
		item.StockLog = append(item.StockLog, StockLogEntry{
			ID:             entryDoc.str("id"),
			Date:           entryDoc.date("date"),
			QuantityChange: entryDoc.integer("quantityChange"),
			ActionType:     entryDoc.str("actionType"),
			Notes:          entryDoc.str("notes"),
			PerformedBy:    entryDoc.str("performedBy"),
			Year:           entryDoc.integer("year"),
		})
	}
	return nil
}

func (s *SaleRecord) UnmarshalJSON(data []byte) error {
	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}
	*s = SaleRecord{
		ID:             doc.str("id"),
		InventoryName:  doc.str("inventoryName"),
		ItemName:       doc.str("itemName"),
		QuantitySold:   doc.integer("quantitySold"),
		UnitPrice:      doc.amount("unitPrice"),
		Total:          doc.amount("total"),
		SoldAt:         doc.date("soldAt"),
		SoldBy:         doc.str("soldBy"),
		Year:           doc.integer("year"),
		Status:         doc.str("status"),
		ReversedAt:     doc.date("reversedAt"),
		ReversedBy:     doc.str("reversedBy"),
		ReversalReason: doc.str("reversalReason"),
	}
	return nil
}
