package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
)

const defaultLowStockThreshold = 5

// InventoryService reports stock positions and history of mirrored inventories.
type InventoryService struct {
	reader    snapshotReader
	threshold int
}

// NewInventoryService constructs an InventoryService. A non-positive threshold
// falls back to five units.
func NewInventoryService(snapshots SnapshotProvider, billingCfg config.BillingConfig, inventoryCfg config.InventoryConfig) *InventoryService {
	threshold := inventoryCfg.LowStockThreshold
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}
	return &InventoryService{reader: newSnapshotReader(snapshots, billingCfg), threshold: threshold}
}

// List returns every inventory with its stock statistics, newest year first.
func (s *InventoryService) List(ctx context.Context) ([]dto.InventorySummary, error) {
	snap, err := s.reader.load(models.CollectionInventories)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.InventorySummary, 0, len(snap.Inventories))
	for _, inv := range snap.Inventories {
		summaries = append(summaries, s.summary(inv))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Year != summaries[j].Year {
			return summaries[i].Year > summaries[j].Year
		}
		return summaries[i].InventoryName < summaries[j].InventoryName
	})
	return summaries, nil
}

// Get returns one inventory by name. When several years share the name, year
// selects one; zero picks the latest.
func (s *InventoryService) Get(ctx context.Context, name string, year int) (*dto.InventoryDetail, error) {
	snap, err := s.reader.load(models.CollectionInventories, models.CollectionSales)
	if err != nil {
		return nil, err
	}
	inv, ok := findInventory(snap.Inventories, name, year)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("inventory %s not found", name))
	}

	detail := &dto.InventoryDetail{
		InventorySummary: s.summary(inv),
		Items:            make([]dto.InventoryItemView, 0, len(inv.Items)),
		Sales:            []models.SaleRecord{},
		SalesTotal:       decimal.Zero,
	}
	for _, item := range inv.Items {
		threshold := s.thresholdFor(item)
		detail.Items = append(detail.Items, dto.InventoryItemView{
			ItemName:     item.ItemName,
			Quantity:     item.Quantity,
			DefaultPrice: item.DefaultPrice,
			Threshold:    threshold,
			Value:        item.DefaultPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			LowStock:     item.Quantity > 0 && item.Quantity <= threshold,
			OutOfStock:   item.Quantity <= 0,
		})
	}
	for _, sale := range snap.Sales {
		if !saleBelongsTo(sale, inv) {
			continue
		}
		detail.Sales = append(detail.Sales, sale)
		detail.SalesTotal = detail.SalesTotal.Add(sale.Total)
	}
	detail.History = s.stockHistory(inv, snap.Sales)
	return detail, nil
}

func (s *InventoryService) thresholdFor(item models.InventoryItem) int {
	if item.LowStockThreshold != nil {
		return *item.LowStockThreshold
	}
	return s.threshold
}

func (s *InventoryService) summary(inv models.Inventory) dto.InventorySummary {
	stats := dto.InventoryStats{TotalItems: len(inv.Items), TotalValue: decimal.Zero}
	for _, item := range inv.Items {
		stats.TotalQuantity += item.Quantity
		stats.TotalValue = stats.TotalValue.Add(item.DefaultPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		switch {
		case item.Quantity <= 0:
			stats.OutOfStock++
		case item.Quantity <= s.thresholdFor(item):
			stats.LowStock++
		}
	}
	return dto.InventorySummary{
		InventoryName: inv.InventoryName,
		Year:          inv.Year,
		CreatedAt:     inv.CreatedAt,
		Stats:         stats,
	}
}

// stockHistory merges stock log entries with the completed sales of the same
// inventory and year, newest first.
func (s *InventoryService) stockHistory(inv models.Inventory, sales []models.SaleRecord) []dto.StockHistoryEntry {
	history := []dto.StockHistoryEntry{}
	for _, item := range inv.Items {
		for _, entry := range item.StockLog {
			history = append(history, dto.StockHistoryEntry{
				Kind:        dto.StockHistoryRestock,
				Date:        entry.Date,
				ItemName:    item.ItemName,
				Quantity:    entry.QuantityChange,
				Note:        entry.ActionType,
				PerformedBy: entry.PerformedBy,
			})
		}
	}
	for _, sale := range sales {
		if !saleBelongsTo(sale, inv) {
			continue
		}
		total := sale.Total
		history = append(history, dto.StockHistoryEntry{
			Kind:        dto.StockHistorySale,
			Date:        sale.SoldAt,
			ItemName:    sale.ItemName,
			Quantity:    -sale.QuantitySold,
			Value:       &total,
			Note:        "Sold by " + sale.SoldBy,
			PerformedBy: sale.SoldBy,
		})
	}
	loc := s.reader.loc
	sort.SliceStable(history, func(i, j int) bool {
		return dateOrZero(history[i].Date, loc).After(dateOrZero(history[j].Date, loc))
	})
	return history
}

// saleBelongsTo reports whether a completed sale was made from inv.
func saleBelongsTo(sale models.SaleRecord, inv models.Inventory) bool {
	return sale.Status == models.SaleStatusCompleted && sale.InventoryName == inv.InventoryName && sale.Year == inv.Year
}

func findInventory(inventories []models.Inventory, name string, year int) (models.Inventory, bool) {
	var found models.Inventory
	ok := false
	for _, inv := range inventories {
		if inv.InventoryName != name {
			continue
		}
		if year != 0 {
			if inv.Year == year {
				return inv, true
			}
			continue
		}
		if !ok || inv.Year > found.Year {
			found, ok = inv, true
		}
	}
	return found, ok
}
