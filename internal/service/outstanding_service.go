package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-mirror/internal/billing"
	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
)

// Outstanding list sources.
const (
	OutstandingSourcePreCalculated = "pre-calculated"
	OutstandingSourceComputed      = "computed"
)

// OutstandingServiceParams groups constructor dependencies.
type OutstandingServiceParams struct {
	Snapshots SnapshotProvider
	Cache     *CacheService
	Logger    *zap.Logger
	Billing   config.BillingConfig
	CacheTTL  time.Duration
}

// OutstandingService lists students owing money, either as published by the
// desktop application or as recomputed here, and reconciles the two.
type OutstandingService struct {
	reader    snapshotReader
	cache     *CacheService
	logger    *zap.Logger
	tolerance decimal.Decimal
	cacheTTL  time.Duration
}

// NewOutstandingService constructs an OutstandingService.
func NewOutstandingService(params OutstandingServiceParams) *OutstandingService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tolerance := decimal.NewFromFloat(params.Billing.ReconcileTolerance)
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	return &OutstandingService{
		reader:    newSnapshotReader(params.Snapshots, params.Billing),
		cache:     params.Cache,
		logger:    logger,
		tolerance: tolerance,
		cacheTTL:  params.CacheTTL,
	}
}

// PreCalculated returns the outstanding students published upstream.
func (s *OutstandingService) PreCalculated(ctx context.Context) (*dto.OutstandingList, error) {
	snap, err := s.reader.load(models.CollectionOutstandingStudents, models.CollectionSettings)
	if err != nil {
		return nil, err
	}
	list := &dto.OutstandingList{
		Source:       OutstandingSourcePreCalculated,
		BillingCycle: snap.Settings.BillingCycle,
		Entries:      make([]dto.OutstandingEntry, 0, len(snap.OutstandingStudents)),
		Total:        decimal.Zero,
	}
	for _, o := range snap.OutstandingStudents {
		list.Entries = append(list.Entries, dto.OutstandingEntry{
			StudentID:     o.ID,
			FullName:      o.FullName,
			ClassName:     o.ClassName,
			ClassGroup:    o.ClassGroup,
			ParentContact: o.ParentContact,
			HasTransport:  o.HasTransport,
			Amount:        o.OutstandingAmount,
			LastUpdated:   o.LastUpdated,
		})
		list.Total = list.Total.Add(o.OutstandingAmount)
	}
	list.Count = len(list.Entries)
	sortEntries(list.Entries)
	return list, nil
}

// Computed returns the students owing money according to the billing engine,
// largest balance first.
func (s *OutstandingService) Computed(ctx context.Context) (*dto.OutstandingList, bool, error) {
	snap, err := s.reader.load(models.CollectionStudents, models.CollectionSettings)
	if err != nil {
		return nil, false, err
	}
	asOf := s.reader.asOf()
	key := SnapshotKey("outstanding", snap, asOf.Format("2006-01"))

	return Cached(ctx, s.cache, key, s.cacheTTL, func() (*dto.OutstandingList, error) {
		return computeOutstanding(snap, asOf), nil
	})
}

func computeOutstanding(snap *models.Snapshot, asOf time.Time) *dto.OutstandingList {
	cycle := snap.Settings.BillingCycle
	list := &dto.OutstandingList{
		Source:       OutstandingSourceComputed,
		BillingCycle: cycle,
		Entries:      []dto.OutstandingEntry{},
		Total:        decimal.Zero,
	}
	for _, student := range snap.Students {
		owed := billing.OutstandingFromEnrollment(student, cycle, snap.Settings, asOf)
		if !owed.IsPositive() {
			continue
		}
		list.Entries = append(list.Entries, dto.OutstandingEntry{
			StudentID:     student.ID,
			FullName:      student.FullName,
			ClassName:     student.ClassName,
			ClassGroup:    student.ClassGroup,
			ParentContact: student.ParentContact,
			HasTransport:  student.HasTransport,
			Amount:        owed,
		})
		list.Total = list.Total.Add(owed)
	}
	list.Count = len(list.Entries)
	sortEntries(list.Entries)
	return list
}

func sortEntries(entries []dto.OutstandingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Amount.Equal(entries[j].Amount) {
			return entries[i].Amount.GreaterThan(entries[j].Amount)
		}
		return entries[i].FullName < entries[j].FullName
	})
}

// Reconcile compares, per student, the recomputed balance with the balance
// implied by stored outstanding amounts and with the pre-calculated figure.
// Students whose figures differ by more than the tolerance are flagged.
func (s *OutstandingService) Reconcile(ctx context.Context) (*dto.ReconciliationReport, error) {
	snap, err := s.reader.load(models.CollectionStudents, models.CollectionSettings, models.CollectionOutstandingStudents)
	if err != nil {
		return nil, err
	}
	asOf := s.reader.asOf()
	cycle := snap.Settings.BillingCycle

	preCalculated := make(map[string]decimal.Decimal, len(snap.OutstandingStudents))
	for _, o := range snap.OutstandingStudents {
		preCalculated[o.ID] = o.OutstandingAmount
	}

	report := &dto.ReconciliationReport{
		Tolerance:  s.tolerance,
		Entries:    make([]dto.ReconciliationEntry, 0, len(snap.Students)),
		TotalDelta: decimal.Zero,
	}
	seen := make(map[string]bool, len(snap.Students))
	for _, student := range snap.Students {
		seen[student.ID] = true
		computed := billing.OutstandingFromEnrollment(student, cycle, snap.Settings, asOf)
		stored := billing.StoredOutstanding(student, cycle, asOf)
		entry := dto.ReconciliationEntry{
			StudentID:  student.ID,
			FullName:   student.FullName,
			Computed:   computed,
			Stored:     stored,
			Difference: computed.Sub(stored),
		}
		divergent := entry.Difference.Abs().GreaterThan(s.tolerance)
		if pre, ok := preCalculated[student.ID]; ok {
			pre := pre
			entry.PreCalculated = &pre
			divergent = divergent || computed.Sub(pre).Abs().GreaterThan(s.tolerance)
		} else if computed.IsPositive() {
			// owing students are expected in the pre-calculated list
			divergent = true
		}
		entry.Divergent = divergent
		if divergent {
			report.Divergent++
		}
		report.TotalDelta = report.TotalDelta.Add(entry.Difference)
		report.Entries = append(report.Entries, entry)
	}
	for _, o := range snap.OutstandingStudents {
		if !seen[o.ID] {
			report.Orphans = append(report.Orphans, o.ID)
		}
	}
	sort.Strings(report.Orphans)
	sort.SliceStable(report.Entries, func(i, j int) bool {
		if report.Entries[i].Divergent != report.Entries[j].Divergent {
			return report.Entries[i].Divergent
		}
		return report.Entries[i].Difference.Abs().GreaterThan(report.Entries[j].Difference.Abs())
	})

	if report.Divergent > 0 {
		s.logger.Info("outstanding figures diverge",
			zap.Int("students", report.Divergent),
			zap.String("tolerance", s.tolerance.String()))
	}
	return report, nil
}
