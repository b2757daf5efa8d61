package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-mirror/internal/billing"
	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
)

// FinanceServiceParams groups constructor dependencies.
type FinanceServiceParams struct {
	Snapshots SnapshotProvider
	Cache     *CacheService
	Logger    *zap.Logger
	Billing   config.BillingConfig
	CacheTTL  time.Duration
}

// FinanceService composes the dashboard totals and monthly collections.
type FinanceService struct {
	reader   snapshotReader
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewFinanceService constructs a FinanceService.
func NewFinanceService(params FinanceServiceParams) *FinanceService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceService{
		reader:   newSnapshotReader(params.Snapshots, params.Billing),
		cache:    params.Cache,
		logger:   logger,
		cacheTTL: params.CacheTTL,
	}
}

// Dashboard returns the headline totals and reports whether they came from cache.
func (s *FinanceService) Dashboard(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	snap, err := s.reader.load(
		models.CollectionStudents,
		models.CollectionSettings,
		models.CollectionExpenses,
		models.CollectionExtraBilling,
		models.CollectionOutstandingStudents,
	)
	if err != nil {
		return nil, false, err
	}
	asOf := s.reader.asOf()
	key := SnapshotKey("dashboard", snap, asOf.Format("2006-01"))

	summary, hit, err := Cached(ctx, s.cache, key, s.cacheTTL, func() (*dto.DashboardResponse, error) {
		return s.composeDashboard(snap, asOf), nil
	})
	return summary, hit, err
}

func (s *FinanceService) composeDashboard(snap *models.Snapshot, asOf time.Time) *dto.DashboardResponse {
	cycle := snap.Settings.BillingCycle
	expenses := summarizeExpenses(snap.Expenses)

	extra := decimal.Zero
	for _, b := range snap.ExtraBilling {
		extra = extra.Add(b.Amount)
	}

	preCalculated := decimal.Zero
	for _, o := range snap.OutstandingStudents {
		preCalculated = preCalculated.Add(o.OutstandingAmount)
	}

	computed := decimal.Zero
	var warnings []billing.Warning
	for _, student := range snap.Students {
		result := billing.Evaluate(student, cycle, snap.Settings, asOf)
		computed = computed.Add(result.Total)
		warnings = append(warnings, result.Breakdown.Warnings...)
	}
	if len(warnings) > 0 {
		s.logger.Debug("students with unresolved class groups", zap.Int("count", len(warnings)))
	}

	return &dto.DashboardResponse{
		TotalStudents:            len(snap.Students),
		TotalExpenses:            expenses.Total,
		ReversedExpenses:         expenses.ReversedCount,
		ReversedExpensesAmount:   expenses.ReversedAmount,
		TotalExtraBilling:        extra,
		PreCalculatedOutstanding: preCalculated,
		ComputedOutstanding:      computed,
		Collections:              collectionsFor(snap, asOf),
		BillingCycle:             cycle,
		Warnings:                 warnings,
		SnapshotVersion:          snap.Version,
		GeneratedAt:              asOf.UTC(),
	}
}

// FeeCollections returns tuition and transport collected in the current month.
func (s *FinanceService) FeeCollections(ctx context.Context) (*dto.FeeCollections, bool, error) {
	snap, err := s.reader.load(models.CollectionStudents, models.CollectionSettings)
	if err != nil {
		return nil, false, err
	}
	asOf := s.reader.asOf()
	key := SnapshotKey("collections", snap, asOf.Format("2006-01"))

	return Cached(ctx, s.cache, key, s.cacheTTL, func() (*dto.FeeCollections, error) {
		collections := collectionsFor(snap, asOf)
		return &collections, nil
	})
}

func collectionsFor(snap *models.Snapshot, asOf time.Time) dto.FeeCollections {
	cycle := snap.Settings.BillingCycle
	tuition := billing.MonthlyTuitionCollections(snap.Students, cycle, asOf)
	transport := billing.MonthlyTransportCollections(snap.Students, asOf)
	return dto.FeeCollections{
		Month:        asOf.Month().String(),
		Year:         asOf.Year(),
		BillingCycle: cycle,
		Tuition:      tuition,
		Transport:    transport,
		Total:        tuition.Add(transport),
	}
}
