package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/billing"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// Student status filters accepted by the list endpoint.
const (
	StudentStatusPaid        = "paid"
	StudentStatusPartial     = "partial"
	StudentStatusOutstanding = "outstanding"
)

// StudentListQuery captures list filters for students.
type StudentListQuery struct {
	Search     string `form:"search" validate:"omitempty,max=100"`
	ClassGroup string `form:"classGroup" validate:"omitempty,max=64"`
	Status     string `form:"status" validate:"omitempty,oneof=paid partial outstanding"`
	SortBy     string `form:"sortBy" validate:"omitempty,oneof=name outstanding"`
	SortOrder  string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// StudentSummary is a student row with the recomputed balance.
type StudentSummary struct {
	ID           string                `json:"id"`
	FullName     string                `json:"fullName"`
	ClassName    string                `json:"className,omitempty"`
	ClassGroup   string                `json:"classGroup"`
	HasTransport bool                  `json:"hasTransport"`
	SchoolFees   decimal.Decimal       `json:"schoolFeesOutstanding"`
	Transport    decimal.Decimal       `json:"transportOutstanding"`
	Outstanding  decimal.Decimal       `json:"outstanding"`
	Status       billing.PaymentStatus `json:"status"`
}

// StudentDetail carries the full per-period computation of one student.
type StudentDetail struct {
	Student           models.Student        `json:"student"`
	SchoolFees        decimal.Decimal       `json:"schoolFeesOutstanding"`
	Transport         decimal.Decimal       `json:"transportOutstanding"`
	Outstanding       decimal.Decimal       `json:"outstanding"`
	StoredOutstanding decimal.Decimal       `json:"storedOutstanding"`
	Status            billing.PaymentStatus `json:"status"`
	Breakdown         billing.Breakdown     `json:"breakdown"`
	Warnings          []billing.Warning     `json:"warnings,omitempty"`
}

// OutstandingEntry is one student owing money.
type OutstandingEntry struct {
	StudentID     string          `json:"studentId"`
	FullName      string          `json:"fullName"`
	ClassName     string          `json:"className,omitempty"`
	ClassGroup    string          `json:"classGroup"`
	ParentContact string          `json:"parentContact,omitempty"`
	HasTransport  bool            `json:"hasTransport"`
	Amount        decimal.Decimal `json:"amount"`
	LastUpdated   string          `json:"lastUpdated,omitempty"`
}

// OutstandingList is a list of owing students and their combined balance.
type OutstandingList struct {
	Source       string              `json:"source"`
	BillingCycle models.BillingCycle `json:"billingCycle"`
	Entries      []OutstandingEntry  `json:"entries"`
	Count        int                 `json:"count"`
	Total        decimal.Decimal     `json:"total"`
}

// ReconciliationEntry compares the three outstanding figures of one student.
type ReconciliationEntry struct {
	StudentID     string           `json:"studentId"`
	FullName      string           `json:"fullName"`
	Computed      decimal.Decimal  `json:"computed"`
	Stored        decimal.Decimal  `json:"stored"`
	PreCalculated *decimal.Decimal `json:"preCalculated,omitempty"`
	Difference    decimal.Decimal  `json:"difference"`
	Divergent     bool             `json:"divergent"`
}

// ReconciliationReport lists every student with divergence flags.
type ReconciliationReport struct {
	Tolerance  decimal.Decimal       `json:"tolerance"`
	Entries    []ReconciliationEntry `json:"entries"`
	Divergent  int                   `json:"divergent"`
	Orphans    []string              `json:"orphanedPreCalculated,omitempty"`
	TotalDelta decimal.Decimal       `json:"totalDifference"`
}
