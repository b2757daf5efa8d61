package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
)

// ExpenseService lists mirrored expenses.
type ExpenseService struct {
	reader snapshotReader
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(snapshots SnapshotProvider, billingCfg config.BillingConfig) *ExpenseService {
	return &ExpenseService{reader: newSnapshotReader(snapshots, billingCfg)}
}

// Summary returns expenses newest first. Reversed expenses are listed but
// excluded from the total.
func (s *ExpenseService) Summary(ctx context.Context) (*dto.ExpenseSummary, error) {
	snap, err := s.reader.load(models.CollectionExpenses)
	if err != nil {
		return nil, err
	}
	summary := summarizeExpenses(snap.Expenses)

	expenses := append([]models.Expense(nil), snap.Expenses...)
	loc := s.reader.loc
	sort.SliceStable(expenses, func(i, j int) bool {
		return dateOrZero(expenses[i].Date, loc).After(dateOrZero(expenses[j].Date, loc))
	})
	summary.Expenses = expenses
	return &summary, nil
}

func summarizeExpenses(expenses []models.Expense) dto.ExpenseSummary {
	summary := dto.ExpenseSummary{
		Count:          len(expenses),
		Total:          decimal.Zero,
		ReversedAmount: decimal.Zero,
	}
	for _, e := range expenses {
		if e.IsReversed {
			summary.ReversedCount++
			summary.ReversedAmount = summary.ReversedAmount.Add(e.Amount)
			continue
		}
		summary.Total = summary.Total.Add(e.Amount)
	}
	return summary
}

// dateOrZero parses a mirrored date; malformed dates sort last.
func dateOrZero(raw string, loc *time.Location) time.Time {
	d, ok := models.ParseDate(raw, loc)
	if !ok {
		return time.Time{}
	}
	return d
}
