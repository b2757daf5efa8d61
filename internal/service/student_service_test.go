package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-mirror/internal/billing"
	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
)

func newStudentServiceForTest(snap *models.Snapshot, cache *CacheService, strict bool) *StudentService {
	cfg := fixtureBilling()
	cfg.StrictClassGroups = strict
	svc := NewStudentService(StudentServiceParams{
		Snapshots: staticSnapshots{snap: snap},
		Cache:     cache,
		Billing:   cfg,
	})
	fixedReader(&svc.reader)
	return svc
}

func studentIDs(list []dto.StudentSummary) []string {
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestStudentListDefaultsToNameOrder(t *testing.T) {
	svc := newStudentServiceForTest(fixtureSnapshot(), nil, false)

	list, pagination, _, err := svc.List(context.Background(), dto.StudentListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "b1", "c1", "d1"}, studentIDs(list))
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 4, pagination.TotalCount)

	assert.Equal(t, "100", list[0].Outstanding.String())
	assert.Equal(t, billing.StatusPartialPayment, list[0].Status.Status)
	assert.Equal(t, billing.StatusPaidInFull, list[1].Status.Status)
	assert.Equal(t, "200", list[3].SchoolFees.String())
	assert.Equal(t, "60", list[3].Transport.String())
	assert.Equal(t, billing.StatusOutstanding, list[3].Status.Status)
}

func TestStudentListFilters(t *testing.T) {
	svc := newStudentServiceForTest(fixtureSnapshot(), nil, false)
	ctx := context.Background()

	cases := []struct {
		name  string
		query dto.StudentListQuery
		want  []string
	}{
		{name: "search", query: dto.StudentListQuery{Search: "  BOB "}, want: []string{"b1"}},
		{name: "class group", query: dto.StudentListQuery{ClassGroup: "missing"}, want: []string{"c1"}},
		{name: "outstanding", query: dto.StudentListQuery{Status: dto.StudentStatusOutstanding}, want: []string{"d1"}},
		{name: "partial", query: dto.StudentListQuery{Status: dto.StudentStatusPartial}, want: []string{"a1"}},
		{name: "paid", query: dto.StudentListQuery{Status: dto.StudentStatusPaid}, want: []string{"b1", "c1"}},
		{name: "page two", query: dto.StudentListQuery{Page: 2, PageSize: 3}, want: []string{"d1"}},
		{name: "beyond last page", query: dto.StudentListQuery{Page: 9, PageSize: 3}, want: []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, _, _, err := svc.List(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, studentIDs(list))
		})
	}
}

func TestStudentListSortsByOutstanding(t *testing.T) {
	svc := newStudentServiceForTest(fixtureSnapshot(), nil, false)

	list, _, _, err := svc.List(context.Background(), dto.StudentListQuery{SortBy: "outstanding", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "a1"}, studentIDs(list)[:2])

	list, _, _, err = svc.List(context.Background(), dto.StudentListQuery{SortBy: "outstanding"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "c1", "a1", "d1"}, studentIDs(list))
}

func TestStudentListValidation(t *testing.T) {
	svc := newStudentServiceForTest(fixtureSnapshot(), nil, false)

	_, _, _, err := svc.List(context.Background(), dto.StudentListQuery{Status: "overdue"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, _, _, err = svc.List(context.Background(), dto.StudentListQuery{PageSize: 500})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStudentListUsesCache(t *testing.T) {
	repo := newMemoryCache()
	svc := newStudentServiceForTest(fixtureSnapshot(), newFixtureCache(repo), false)

	_, _, hit, err := svc.List(context.Background(), dto.StudentListQuery{})
	require.NoError(t, err)
	assert.False(t, hit)

	list, _, hit, err := svc.List(context.Background(), dto.StudentListQuery{Status: dto.StudentStatusOutstanding})
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, list, 1)
	assert.Equal(t, "260", list[0].Outstanding.String())
}

func TestStudentGetDetail(t *testing.T) {
	svc := newStudentServiceForTest(fixtureSnapshot(), nil, false)

	detail, err := svc.Get(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "260", detail.Outstanding.String())
	assert.Equal(t, "260", detail.StoredOutstanding.String())
	assert.Len(t, detail.Breakdown.Lines, 2)
	assert.Empty(t, detail.Warnings)

	_, err = svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestStudentGetUnknownClassGroup(t *testing.T) {
	lenient := newStudentServiceForTest(fixtureSnapshot(), nil, false)
	detail, err := lenient.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, detail.Outstanding.IsZero())
	require.Len(t, detail.Warnings, 1)
	assert.Equal(t, billing.WarnClassGroupNotFound, detail.Warnings[0].Code)

	strict := newStudentServiceForTest(fixtureSnapshot(), nil, true)
	_, err = strict.Get(context.Background(), "c1")
	assert.ErrorIs(t, err, appErrors.ErrConfiguration)
}
