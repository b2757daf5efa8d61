package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/billing"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// DashboardResponse aggregates the headline finance figures.
type DashboardResponse struct {
	TotalStudents            int                 `json:"totalStudents"`
	TotalExpenses            decimal.Decimal     `json:"totalExpenses"`
	ReversedExpenses         int                 `json:"reversedExpenses"`
	ReversedExpensesAmount   decimal.Decimal     `json:"reversedExpensesAmount"`
	TotalExtraBilling        decimal.Decimal     `json:"totalExtraBilling"`
	PreCalculatedOutstanding decimal.Decimal     `json:"preCalculatedOutstanding"`
	ComputedOutstanding      decimal.Decimal     `json:"computedOutstanding"`
	Collections              FeeCollections      `json:"collections"`
	BillingCycle             models.BillingCycle `json:"billingCycle"`
	Warnings                 []billing.Warning   `json:"warnings,omitempty"`
	SnapshotVersion          int64               `json:"snapshotVersion"`
	GeneratedAt              time.Time           `json:"generatedAt"`
}

// FeeCollections reports tuition and transport collected in the current month.
type FeeCollections struct {
	Month        string              `json:"month"`
	Year         int                 `json:"year"`
	BillingCycle models.BillingCycle `json:"billingCycle"`
	Tuition      decimal.Decimal     `json:"tuition"`
	Transport    decimal.Decimal     `json:"transport"`
	Total        decimal.Decimal     `json:"total"`
}

// ExpenseSummary lists expenses newest first with totals excluding reversals.
type ExpenseSummary struct {
	Expenses       []models.Expense `json:"expenses"`
	Count          int              `json:"count"`
	Total          decimal.Decimal  `json:"total"`
	ReversedCount  int              `json:"reversedCount"`
	ReversedAmount decimal.Decimal  `json:"reversedAmount"`
}
