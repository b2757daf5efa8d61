package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-mirror/internal/billing"
	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
)

const (
	defaultStudentPageSize = 20
)

// StudentServiceParams groups constructor dependencies.
type StudentServiceParams struct {
	Snapshots SnapshotProvider
	Cache     *CacheService
	Validator *validator.Validate
	Logger    *zap.Logger
	Billing   config.BillingConfig
	CacheTTL  time.Duration
}

// StudentService exposes students with their recomputed balances.
type StudentService struct {
	reader    snapshotReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	strict    bool
	cacheTTL  time.Duration
}

// NewStudentService constructs a StudentService.
func NewStudentService(params StudentServiceParams) *StudentService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		reader:    newSnapshotReader(params.Snapshots, params.Billing),
		cache:     params.Cache,
		validator: validate,
		logger:    logger,
		strict:    params.Billing.StrictClassGroups,
		cacheTTL:  params.CacheTTL,
	}
}

// List returns a filtered, sorted page of students and whether the computed
// balances came from cache.
func (s *StudentService) List(ctx context.Context, query dto.StudentListQuery) ([]dto.StudentSummary, *models.Pagination, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student query")
	}
	snap, err := s.reader.load(models.CollectionStudents, models.CollectionSettings)
	if err != nil {
		return nil, nil, false, err
	}
	asOf := s.reader.asOf()
	key := SnapshotKey("students", snap, asOf.Format("2006-01"))

	all, hit, err := Cached(ctx, s.cache, key, s.cacheTTL, func() ([]dto.StudentSummary, error) {
		return summarizeStudents(snap, asOf), nil
	})
	if err != nil {
		return nil, nil, false, err
	}

	filtered := filterStudents(all, query)
	sortStudents(filtered, query.SortBy, query.SortOrder)

	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = defaultStudentPageSize
	}
	start := (page - 1) * size
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}

	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: len(filtered)}
	return filtered[start:end], pagination, hit, nil
}

// Get returns the full balance computation of one student.
func (s *StudentService) Get(ctx context.Context, id string) (*dto.StudentDetail, error) {
	snap, err := s.reader.load(models.CollectionStudents, models.CollectionSettings)
	if err != nil {
		return nil, err
	}
	student, ok := findStudent(snap.Students, id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
	}

	asOf := s.reader.asOf()
	cycle := snap.Settings.BillingCycle
	result := billing.Evaluate(student, cycle, snap.Settings, asOf)
	if s.strict && len(result.Breakdown.Warnings) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, result.Breakdown.Warnings[0].Message)
	}

	return &dto.StudentDetail{
		Student:           student,
		SchoolFees:        result.SchoolFees,
		Transport:         result.Transport,
		Outstanding:       result.Total,
		StoredOutstanding: billing.StoredOutstanding(student, cycle, asOf),
		Status:            result.Status,
		Breakdown:         result.Breakdown,
		Warnings:          result.Breakdown.Warnings,
	}, nil
}

func findStudent(students []models.Student, id string) (models.Student, bool) {
	for _, student := range students {
		if student.ID == id {
			return student, true
		}
	}
	return models.Student{}, false
}

func summarizeStudents(snap *models.Snapshot, asOf time.Time) []dto.StudentSummary {
	cycle := snap.Settings.BillingCycle
	summaries := make([]dto.StudentSummary, 0, len(snap.Students))
	for _, student := range snap.Students {
		result := billing.Evaluate(student, cycle, snap.Settings, asOf)
		summaries = append(summaries, dto.StudentSummary{
			ID:           student.ID,
			FullName:     student.FullName,
			ClassName:    student.ClassName,
			ClassGroup:   student.ClassGroup,
			HasTransport: student.HasTransport,
			SchoolFees:   result.SchoolFees,
			Transport:    result.Transport,
			Outstanding:  result.Total,
			Status:       result.Status,
		})
	}
	return summaries
}

var statusFilters = map[string]string{
	dto.StudentStatusPaid:        billing.StatusPaidInFull,
	dto.StudentStatusPartial:     billing.StatusPartialPayment,
	dto.StudentStatusOutstanding: billing.StatusOutstanding,
}

func filterStudents(all []dto.StudentSummary, query dto.StudentListQuery) []dto.StudentSummary {
	search := strings.ToLower(strings.TrimSpace(query.Search))
	result := make([]dto.StudentSummary, 0, len(all))
	for _, summary := range all {
		if search != "" && !strings.Contains(strings.ToLower(summary.FullName), search) {
			continue
		}
		if query.ClassGroup != "" && summary.ClassGroup != query.ClassGroup {
			continue
		}
		if query.Status != "" && summary.Status.Status != statusFilters[query.Status] {
			continue
		}
		result = append(result, summary)
	}
	return result
}

func sortStudents(list []dto.StudentSummary, sortBy, order string) {
	desc := order == "desc"
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if sortBy == "outstanding" && !a.Outstanding.Equal(b.Outstanding) {
			if desc {
				return a.Outstanding.GreaterThan(b.Outstanding)
			}
			return a.Outstanding.LessThan(b.Outstanding)
		}
		if desc {
			return strings.ToLower(a.FullName) > strings.ToLower(b.FullName)
		}
		return strings.ToLower(a.FullName) < strings.ToLower(b.FullName)
	})
}
