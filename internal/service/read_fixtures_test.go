package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
)

var fixtureAsOf = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type staticSnapshots struct {
	snap *models.Snapshot
}

func (s staticSnapshots) Snapshot() *models.Snapshot { return s.snap }

func (s staticSnapshots) Ready() bool { return s.snap != nil && s.snap.Ready() }

// memoryCache stores JSON like the Redis repository so cached values go
// through the same round trip.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	sets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	m.sets++
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func paidMonth(period int, paid string, paidDate string) models.FeePayment {
	return models.FeePayment{
		Period:            period,
		AmountDue:         amount("100"),
		AmountPaid:        amount(paid),
		OutstandingAmount: amount("100").Sub(amount(paid)),
		Paid:              paid == "100",
		PaidDate:          paidDate,
	}
}

// fixtureSnapshot is a fully loaded snapshot as of fixtureAsOf:
// Alice owes 100 with earlier payments, Bob is paid up, Cara has an unknown
// class group and Dan owes two months of tuition and transport.
func fixtureSnapshot() *models.Snapshot {
	snap := models.NewSnapshot()
	snap.Version = 3
	for _, c := range models.AllCollections {
		snap.Loaded[c] = true
	}
	snap.Settings = models.AppSettings{
		BillingCycle: models.BillingCycleMonthly,
		ClassGroups:  models.ClassGroups{"g1": {ID: "g1", Name: "Lower", StandardFee: amount("100")}},
	}
	snap.Students = []models.Student{
		{
			ID: "a1", FullName: "Alice Achieng", ClassName: "P1", ClassGroup: "g1", AdmissionDate: "2024-01-10",
			FeePayments: []models.FeePayment{
				paidMonth(1, "100", "2024-01-05"),
				paidMonth(2, "100", "2024-02-05"),
				paidMonth(3, "100", "2024-03-05"),
				paidMonth(4, "100", "2024-04-05"),
				paidMonth(5, "100", "2024-05-05"),
				paidMonth(6, "0", ""),
			},
		},
		{
			ID: "b1", FullName: "Bob Barasa", ClassName: "P2", ClassGroup: "g1", AdmissionDate: "2024-03-01",
			FeePayments: []models.FeePayment{
				paidMonth(3, "100", "2024-03-02"),
				paidMonth(4, "100", "2024-04-02"),
				paidMonth(5, "100", "2024-05-02"),
				paidMonth(6, "100", "2024-06-02"),
			},
		},
		{
			ID: "c1", FullName: "Cara Chebet", ClassName: "P3", ClassGroup: "missing", AdmissionDate: "2024-01-01",
			FeePayments: []models.FeePayment{{Period: 1}},
		},
		{
			ID: "d1", FullName: "Dan Deng", ClassName: "P1", ClassGroup: "g1", AdmissionDate: "2024-05-01",
			HasTransport: true, TransportFee: amount("30"), ParentContact: "0700000000",
			FeePayments: []models.FeePayment{
				{Period: 5, AmountDue: amount("130"), OutstandingAmount: amount("130")},
				{Period: 6, AmountDue: amount("130"), OutstandingAmount: amount("130")},
			},
			TransportPayments: []models.TransportPayment{
				{Month: 5, AmountDue: amount("30"), OutstandingAmount: amount("30")},
				{Month: 6, AmountDue: amount("30"), OutstandingAmount: amount("30")},
			},
		},
	}
	snap.OutstandingStudents = []models.OutstandingStudent{
		{ID: "a1", FullName: "Alice Achieng", ClassGroup: "g1", OutstandingAmount: amount("100")},
		{ID: "d1", FullName: "Dan Deng", ClassGroup: "g1", OutstandingAmount: amount("250")},
		{ID: "z9", FullName: "Zed Former", ClassGroup: "g1", OutstandingAmount: amount("40")},
	}
	snap.Expenses = []models.Expense{
		{ID: "e1", Description: "Chalk", Amount: amount("50"), Date: "2024-06-01"},
		{ID: "e2", Description: "Duplicate entry", Amount: amount("20"), Date: "2024-06-03", IsReversed: true},
		{ID: "e3", Description: "Fuel", Amount: amount("5.50"), Date: "2024-05-20"},
	}
	snap.ExtraBilling = []models.ExtraBilling{{ID: "x1", StudentID: "a1", Amount: amount("15")}}

	threshold := 2
	snap.Inventories = []models.Inventory{
		{
			InventoryName: "Uniforms", Year: 2023, CreatedAt: "2023-01-05",
			Items: []models.InventoryItem{{ItemName: "Sweater", Quantity: 40, DefaultPrice: amount("10")}},
		},
		{
			InventoryName: "Uniforms", Year: 2024, CreatedAt: "2024-01-05",
			Items: []models.InventoryItem{
				{
					ItemName: "Shirt", Quantity: 3, DefaultPrice: amount("12.50"),
					StockLog: []models.StockLogEntry{
						{ID: "l1", Date: "2024-01-05", QuantityChange: 10, ActionType: models.StockActionInitial, PerformedBy: "admin"},
						{ID: "l2", Date: "2024-03-01", QuantityChange: 5, ActionType: models.StockActionRestock},
					},
				},
				{ItemName: "Tie", Quantity: 0, DefaultPrice: amount("4")},
				{ItemName: "Socks", Quantity: 2, DefaultPrice: amount("1"), LowStockThreshold: &threshold},
				{ItemName: "Blazer", Quantity: 20, DefaultPrice: amount("30")},
			},
		},
		{InventoryName: "Books", Year: 2024},
	}
	snap.Sales = []models.SaleRecord{
		{ID: "s1", InventoryName: "Uniforms", ItemName: "Shirt", QuantitySold: 2, Total: amount("25"), SoldAt: "2024-02-10T09:00:00Z", SoldBy: "Mary", Year: 2024, Status: models.SaleStatusCompleted},
		{ID: "s2", InventoryName: "Uniforms", ItemName: "Shirt", QuantitySold: 1, Total: amount("12.50"), SoldAt: "2024-04-10T09:00:00Z", SoldBy: "Mary", Year: 2024, Status: models.SaleStatusReversed},
		{ID: "s3", InventoryName: "Uniforms", ItemName: "Shirt", QuantitySold: 10, Total: amount("125"), SoldAt: "2024-05-10T09:00:00Z", SoldBy: "Joe", Year: 2024, Status: models.SaleStatusCompleted},
		{ID: "s4", InventoryName: "Uniforms", ItemName: "Sweater", QuantitySold: 1, Total: amount("10"), SoldAt: "2023-05-10T09:00:00Z", SoldBy: "Joe", Year: 2023, Status: models.SaleStatusCompleted},
	}

	snap.Staff = []models.Staff{
		{ID: "t1", Name: "Grace Wanjiru", Role: "Teacher", IsActive: true},
		{ID: "t2", Name: "Peter Otieno", Role: "Teacher", IsActive: true},
		{ID: "g1", Name: "Sam Guard", Role: "Security", IsActive: true},
		{ID: "o1", Name: "Old Driver", Role: "Driver", IsActive: false},
	}
	snap.DeletedStaff = []models.Staff{{ID: "x1", Name: "Former Clerk", Role: "Admin"}}
	snap.StaffLogs = []models.StaffLog{
		{ID: "sl1", StaffID: "t1", StaffName: "Grace Wanjiru", Role: "Teacher", Date: "2024-06-15", TimeIn: "07:45", TimeOut: "16:00", Duties: "Form 2 maths", Notes: "Covered, extra lesson", IsPresent: true},
		{ID: "sl2", StaffID: "g1", StaffName: "Sam Guard", Role: "Security", Date: "2024-06-15T06:00:00Z", TimeIn: "06:00", Duties: "Gate", IsPresent: true},
		{ID: "sl3", StaffID: "t2", StaffName: "Peter Otieno", Role: "Teacher", Date: "2024-06-14", Duties: "Library duty", IsPresent: true},
	}
	return snap
}

func fixedReader(r *snapshotReader) {
	r.now = func() time.Time { return fixtureAsOf }
}

func fixtureBilling() config.BillingConfig {
	return config.BillingConfig{Timezone: "UTC", ReconcileTolerance: 0.01}
}

func newFixtureCache(repo CacheRepository) *CacheService {
	return NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
}
