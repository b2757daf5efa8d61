package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-mirror/internal/dto"
	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/internal/service"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type fakeMirror struct {
	ready   bool
	version int64
}

func (f fakeMirror) Snapshot() *models.Snapshot {
	snap := models.NewSnapshot()
	snap.Version = f.version
	return snap
}

func (f fakeMirror) Ready() bool { return f.ready }

type fakeFinance struct {
	hit bool
	err error
}

func (f fakeFinance) Dashboard(context.Context) (*dto.DashboardResponse, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return &dto.DashboardResponse{TotalStudents: 4, ComputedOutstanding: decimal.RequireFromString("360")}, f.hit, nil
}

func (f fakeFinance) FeeCollections(context.Context) (*dto.FeeCollections, bool, error) {
	return &dto.FeeCollections{Month: "June", Year: 2024}, f.hit, f.err
}

type fakeStudents struct {
	lastQuery dto.StudentListQuery
}

func (f *fakeStudents) List(_ context.Context, query dto.StudentListQuery) ([]dto.StudentSummary, *models.Pagination, bool, error) {
	f.lastQuery = query
	return []dto.StudentSummary{{ID: "a1", FullName: "Alice"}}, &models.Pagination{Page: query.Page, PageSize: 20, TotalCount: 1}, false, nil
}

func (f *fakeStudents) Get(_ context.Context, id string) (*dto.StudentDetail, error) {
	if id != "a1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &dto.StudentDetail{Student: models.Student{ID: "a1"}}, nil
}

type fakeOutstanding struct{}

func (fakeOutstanding) PreCalculated(context.Context) (*dto.OutstandingList, error) {
	return &dto.OutstandingList{Source: service.OutstandingSourcePreCalculated}, nil
}

func (fakeOutstanding) Computed(context.Context) (*dto.OutstandingList, bool, error) {
	return &dto.OutstandingList{Source: service.OutstandingSourceComputed}, true, nil
}

func (fakeOutstanding) Reconcile(context.Context) (*dto.ReconciliationReport, error) {
	return &dto.ReconciliationReport{Divergent: 1}, nil
}

type fakeExporter struct {
	source string
	query  dto.StaffLogQuery
}

func (f *fakeExporter) OutstandingPDF(_ context.Context, source string) (*service.ExportFile, error) {
	f.source = source
	return &service.ExportFile{Filename: "outstanding-" + source + ".pdf", ContentType: "application/pdf", Payload: []byte("%PDF-1.3")}, nil
}

func (f *fakeExporter) StaffLogCSV(_ context.Context, query dto.StaffLogQuery) (*service.ExportFile, error) {
	f.query = query
	return &service.ExportFile{Filename: "staff-log-2024-06-15.csv", ContentType: "text/csv", Payload: []byte("Date\n")}, nil
}

type fakeInventories struct {
	name string
	year int
}

func (f *fakeInventories) List(context.Context) ([]dto.InventorySummary, error) {
	return []dto.InventorySummary{{InventoryName: "Uniforms"}}, nil
}

func (f *fakeInventories) Get(_ context.Context, name string, year int) (*dto.InventoryDetail, error) {
	f.name, f.year = name, year
	return &dto.InventoryDetail{InventorySummary: dto.InventorySummary{InventoryName: name, Year: year}}, nil
}

type fakeStaff struct{}

func (fakeStaff) Logs(_ context.Context, query dto.StaffLogQuery) (*dto.StaffLogReport, error) {
	return &dto.StaffLogReport{Date: query.Date}, nil
}

type fakeExpenses struct{}

func (fakeExpenses) Summary(context.Context) (*dto.ExpenseSummary, error) {
	return &dto.ExpenseSummary{Count: 2}, nil
}

type testRouter struct {
	engine      *gin.Engine
	students    *fakeStudents
	exporter    *fakeExporter
	inventories *fakeInventories
}

func newTestRouter(mirror fakeMirror, finance fakeFinance) testRouter {
	tr := testRouter{students: &fakeStudents{}, exporter: &fakeExporter{}, inventories: &fakeInventories{}}
	tr.engine = NewRouter(RouterParams{
		APIPrefix:   "/api/v1",
		Metrics:     service.NewMetricsService(),
		Mirror:      mirror,
		Dashboard:   NewDashboardHandler(finance),
		Students:    NewStudentHandler(tr.students),
		Outstanding: NewOutstandingHandler(fakeOutstanding{}, tr.exporter),
		Expenses:    NewExpenseHandler(fakeExpenses{}),
		Inventories: NewInventoryHandler(tr.inventories),
		Staff:       NewStaffHandler(fakeStaff{}, tr.exporter),
	})
	return tr
}

func (tr testRouter) get(t *testing.T, method, path string) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	tr.engine.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var envelope responseEnvelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func TestDashboardReportsCacheAndVersion(t *testing.T) {
	tr := newTestRouter(fakeMirror{ready: true, version: 9}, fakeFinance{hit: true})

	rec, envelope := tr.get(t, http.MethodGet, "/api/v1/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(9), envelope.Meta["snapshot_version"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "360", data["computedOutstanding"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSnapshotUnavailableMapsTo503(t *testing.T) {
	tr := newTestRouter(fakeMirror{}, fakeFinance{err: appErrors.ErrSnapshotUnavailable})

	rec, envelope := tr.get(t, http.MethodGet, "/api/v1/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "SNAPSHOT_UNAVAILABLE", envelope.Error.Code)
}

func TestWritesAreRejected(t *testing.T) {
	tr := newTestRouter(fakeMirror{ready: true}, fakeFinance{})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec, envelope := tr.get(t, method, "/api/v1/students")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, appErrors.ErrReadOnly.Code, envelope.Error.Code)
	}
}

func TestStudentRoutes(t *testing.T) {
	tr := newTestRouter(fakeMirror{ready: true}, fakeFinance{})

	rec, envelope := tr.get(t, http.MethodGet, "/api/v1/students?search=ali&status=partial&page=2&sortBy=outstanding")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ali", tr.students.lastQuery.Search)
	assert.Equal(t, "partial", tr.students.lastQuery.Status)
	assert.Equal(t, "outstanding", tr.students.lastQuery.SortBy)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 2, envelope.Pagination.Page)

	rec, _ = tr.get(t, http.MethodGet, "/api/v1/students?page=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, envelope = tr.get(t, http.MethodGet, "/api/v1/students/zz")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)

	rec, _ = tr.get(t, http.MethodGet, "/api/v1/students/a1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOutstandingRoutes(t *testing.T) {
	tr := newTestRouter(fakeMirror{ready: true}, fakeFinance{})

	rec, envelope := tr.get(t, http.MethodGet, "/api/v1/outstanding/computed")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope.Meta["cache_hit"])

	rec, _ = tr.get(t, http.MethodGet, "/api/v1/outstanding/reconciliation")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = tr.get(t, http.MethodGet, "/api/v1/outstanding/export?source=guess")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = tr.get(t, http.MethodGet, "/api/v1/outstanding/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.OutstandingSourcePreCalculated, tr.exporter.source)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "outstanding-pre-calculated.pdf")
}

func TestInventoryRoutes(t *testing.T) {
	tr := newTestRouter(fakeMirror{ready: true}, fakeFinance{})

	rec, _ := tr.get(t, http.MethodGet, "/api/v1/inventories/Uniforms?year=2023")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Uniforms", tr.inventories.name)
	assert.Equal(t, 2023, tr.inventories.year)

	rec, _ = tr.get(t, http.MethodGet, "/api/v1/inventories/Uniforms?year=last")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = tr.get(t, http.MethodGet, "/api/v1/inventories")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaffRoutes(t *testing.T) {
	tr := newTestRouter(fakeMirror{ready: true}, fakeFinance{})

	rec, envelope := tr.get(t, http.MethodGet, "/api/v1/staff/logs?date=2024-06-15")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2024-06-15","logs":null,"groups":null,"absentStaff":null,"deletedStaff":null,"stats":{"totalStaff":0,"presentToday":0,"absentToday":0}}`, string(envelope.Data))

	rec, _ = tr.get(t, http.MethodGet, "/api/v1/staff/logs/export?role=Teacher")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Teacher", tr.exporter.query.Role)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "staff-log-2024-06-15.csv")
}

func TestExpenseAndCollectionRoutes(t *testing.T) {
	tr := newTestRouter(fakeMirror{ready: true}, fakeFinance{})

	rec, _ := tr.get(t, http.MethodGet, "/api/v1/expenses")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = tr.get(t, http.MethodGet, "/api/v1/fees/collections")
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthReportsBackendState(t *testing.T) {
	checks := HealthChecks{Database: fakePinger{}, Cache: fakePinger{err: errors.New("connection refused")}}
	router := gin.New()
	router.GET("/health", NewMetricsHandler(nil, fakeMirror{ready: true}, checks).Health)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "up", body["database"])
	assert.Equal(t, "down", body["cache"])
}

func TestHealthAndReadiness(t *testing.T) {
	loading := newTestRouter(fakeMirror{}, fakeFinance{})
	rec, _ := loading.get(t, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready := newTestRouter(fakeMirror{ready: true}, fakeFinance{})
	rec, _ = ready.get(t, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ready.get(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cache":"disabled"`)
	rec, _ = ready.get(t, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
