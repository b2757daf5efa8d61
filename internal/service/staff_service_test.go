package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
)

func newStaffServiceForTest(snap *models.Snapshot) *StaffService {
	svc := NewStaffService(staticSnapshots{snap: snap}, nil, fixtureBilling(), config.StaffConfig{})
	fixedReader(&svc.reader)
	return svc
}

func logIDs(logs []models.StaffLog) []string {
	ids := make([]string, 0, len(logs))
	for _, log := range logs {
		ids = append(ids, log.ID)
	}
	return ids
}

func TestStaffLogsDefaultsToToday(t *testing.T) {
	svc := newStaffServiceForTest(fixtureSnapshot())

	report, err := svc.Logs(context.Background(), dto.StaffLogQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", report.Date)
	assert.Equal(t, []string{"sl1", "sl2"}, logIDs(report.Logs))
	assert.Equal(t, dto.StaffStats{TotalStaff: 3, PresentToday: 2, AbsentToday: 1}, report.Stats)
	require.Len(t, report.Absent, 1)
	assert.Equal(t, "t2", report.Absent[0].ID)
	require.Len(t, report.DeletedStaff, 1)

	require.Len(t, report.Groups, 2)
	assert.Equal(t, "Teacher", report.Groups[0].Role)
	assert.Equal(t, "Security", report.Groups[1].Role)
}

func TestStaffLogsFilters(t *testing.T) {
	svc := newStaffServiceForTest(fixtureSnapshot())
	ctx := context.Background()

	report, err := svc.Logs(ctx, dto.StaffLogQuery{Search: "EXTRA"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sl1"}, logIDs(report.Logs))
	assert.Equal(t, 2, report.Stats.PresentToday)

	report, err = svc.Logs(ctx, dto.StaffLogQuery{Role: "Security"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sl2"}, logIDs(report.Logs))
	require.Len(t, report.Groups, 1)

	report, err = svc.Logs(ctx, dto.StaffLogQuery{StaffID: "t1", Search: "gate"})
	require.NoError(t, err)
	assert.Empty(t, report.Logs)
	assert.Empty(t, report.Groups)
}

func TestStaffLogsForAnotherDay(t *testing.T) {
	svc := newStaffServiceForTest(fixtureSnapshot())

	report, err := svc.Logs(context.Background(), dto.StaffLogQuery{Date: "2024-06-14"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sl3"}, logIDs(report.Logs))
	assert.Equal(t, 2, report.Stats.AbsentToday)

	_, err = svc.Logs(context.Background(), dto.StaffLogQuery{Date: "14/06/2024"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
