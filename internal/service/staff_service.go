package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
)

var defaultStaffRoles = []string{"Teacher", "Admin", "Security", "Support Staff", "Driver"}

// StaffService reports daily attendance of school staff.
type StaffService struct {
	reader    snapshotReader
	validator *validator.Validate
	roles     []string
}

// NewStaffService constructs a StaffService.
func NewStaffService(snapshots SnapshotProvider, validate *validator.Validate, billingCfg config.BillingConfig, staffCfg config.StaffConfig) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	roles := staffCfg.Roles
	if len(roles) == 0 {
		roles = defaultStaffRoles
	}
	return &StaffService{
		reader:    newSnapshotReader(snapshots, billingCfg),
		validator: validate,
		roles:     roles,
	}
}

// Logs returns the attendance of one day, today when the query has no date.
// Statistics and absentees cover the whole day; the filters only narrow the
// listed logs.
func (s *StaffService) Logs(ctx context.Context, query dto.StaffLogQuery) (*dto.StaffLogReport, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff log query")
	}
	snap, err := s.reader.load(models.CollectionStaff, models.CollectionStaffLogs)
	if err != nil {
		return nil, err
	}
	date := query.Date
	if date == "" {
		date = s.reader.asOf().Format("2006-01-02")
	}

	var daily []models.StaffLog
	present := map[string]bool{}
	for _, log := range snap.StaffLogs {
		if !sameDay(log.Date, date) {
			continue
		}
		daily = append(daily, log)
		present[log.StaffID] = true
	}

	report := &dto.StaffLogReport{
		Date:         date,
		Logs:         filterStaffLogs(daily, query),
		Groups:       []dto.StaffRoleGroup{},
		Absent:       []models.Staff{},
		DeletedStaff: snap.DeletedStaff,
	}
	if report.DeletedStaff == nil {
		report.DeletedStaff = []models.Staff{}
	}
	for _, member := range snap.Staff {
		if !member.IsActive {
			continue
		}
		report.Stats.TotalStaff++
		if !present[member.ID] {
			report.Absent = append(report.Absent, member)
		}
	}
	report.Stats.PresentToday = len(daily)
	report.Stats.AbsentToday = len(report.Absent)

	for _, role := range s.roles {
		group := dto.StaffRoleGroup{Role: role, Logs: []models.StaffLog{}}
		for _, log := range report.Logs {
			if log.Role == role {
				group.Logs = append(group.Logs, log)
			}
		}
		if len(group.Logs) > 0 {
			report.Groups = append(report.Groups, group)
		}
	}
	return report, nil
}

// sameDay matches plain dates as well as timestamps written for that day.
func sameDay(value, date string) bool {
	value = strings.TrimSpace(value)
	return value == date || strings.HasPrefix(value, date+"T") || strings.HasPrefix(value, date+" ")
}

func filterStaffLogs(logs []models.StaffLog, query dto.StaffLogQuery) []models.StaffLog {
	search := strings.ToLower(strings.TrimSpace(query.Search))
	result := make([]models.StaffLog, 0, len(logs))
	for _, log := range logs {
		if search != "" &&
			!strings.Contains(strings.ToLower(log.StaffName), search) &&
			!strings.Contains(strings.ToLower(log.Duties), search) &&
			!strings.Contains(strings.ToLower(log.Notes), search) {
			continue
		}
		if query.Role != "" && log.Role != query.Role {
			continue
		}
		if query.StaffID != "" && log.StaffID != query.StaffID {
			continue
		}
		result = append(result, log)
	}
	return result
}
