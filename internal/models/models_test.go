package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentUnmarshalLenient(t *testing.T) {
	payload := `{
		"id": "s1",
		"name": "Ada Lovelace",
		"classGroup": "g1",
		"admissionDate": {"seconds": 1704067200, "nanoseconds": 0},
		"hasTransport": "yes",
		"transportFee": "20.50",
		"hasCustomFees": true,
		"customSchoolFee": null,
		"feePayments": [{"period": "3", "amountPaid": 100, "isTransportWaived": true}, 42, "junk"],
		"transportPayments": {"not": "an array"}
	}`

	var s Student
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "Ada Lovelace", s.FullName)
	assert.Equal(t, "2024-01-01T00:00:00Z", s.AdmissionDate)
	assert.False(t, s.HasTransport)
	assert.True(t, s.TransportFee.Equal(decimal.RequireFromString("20.5")))
	assert.True(t, s.HasCustomFees)
	assert.True(t, s.CustomSchoolFee.IsZero())
	require.Len(t, s.FeePayments, 1)
	assert.Equal(t, 3, s.FeePayments[0].Period)
	assert.True(t, s.FeePayments[0].AmountPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.FeePayments[0].IsTransportWaived)
	assert.Nil(t, s.TransportPayments)
}

func TestStudentUnmarshalRejectsNonObject(t *testing.T) {
	var s Student
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`null`), &s))
}

func TestAppSettingsClassGroupForms(t *testing.T) {
	var fromArray AppSettings
	require.NoError(t, json.Unmarshal([]byte(`{"billingCycle":"termly","classGroups":[{"id":"g1","name":"Lower","standardFee":50},{"name":"no id"}]}`), &fromArray))
	assert.Equal(t, BillingCycleTermly, fromArray.BillingCycle)
	require.Len(t, fromArray.ClassGroups, 1)
	group, ok := fromArray.ClassGroups.Resolve("g1")
	require.True(t, ok)
	assert.True(t, group.StandardFee.Equal(decimal.NewFromInt(50)))

	var fromObject AppSettings
	require.NoError(t, json.Unmarshal([]byte(`{"billingCycle":"weekly","classGroups":{"g2":{"name":"Upper","standardFee":"75"}}}`), &fromObject))
	assert.Equal(t, BillingCycleMonthly, fromObject.BillingCycle)
	group, ok = fromObject.ClassGroups.Resolve("g2")
	require.True(t, ok)
	assert.Equal(t, "g2", group.ID)

	_, ok = fromObject.ClassGroups.Resolve("")
	assert.False(t, ok)
}

func TestParseBillingCycle(t *testing.T) {
	cycle, ok := ParseBillingCycle(" Monthly ")
	assert.True(t, ok)
	assert.Equal(t, BillingCycleMonthly, cycle)

	cycle, ok = ParseBillingCycle("TERMLY")
	assert.True(t, ok)
	assert.Equal(t, BillingCycleTermly, cycle)

	cycle, ok = ParseBillingCycle("")
	assert.False(t, ok)
	assert.Equal(t, BillingCycleMonthly, cycle)
}

func TestExpenseReversalFlags(t *testing.T) {
	var legacy Expense
	require.NoError(t, json.Unmarshal([]byte(`{"amount":12.5,"reversed":true}`), &legacy))
	assert.True(t, legacy.IsReversed)

	var current Expense
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"7","isReversed":false}`), &current))
	assert.False(t, current.IsReversed)
	assert.True(t, current.Amount.Equal(decimal.NewFromInt(7)))
}

func TestInventoryItemThreshold(t *testing.T) {
	var inv Inventory
	require.NoError(t, json.Unmarshal([]byte(`{
		"inventoryName": "Uniforms",
		"year": 2024,
		"items": [
			{"itemName": "Shirt", "quantity": 3, "defaultPrice": 10, "lowStockThreshold": 2, "stockLog": [{"id":"l1","quantityChange":5,"actionType":"Restock","year":2024}]},
			{"itemName": "Tie", "quantity": 0}
		]
	}`), &inv))

	require.Len(t, inv.Items, 2)
	require.NotNil(t, inv.Items[0].LowStockThreshold)
	assert.Equal(t, 2, *inv.Items[0].LowStockThreshold)
	require.Len(t, inv.Items[0].StockLog, 1)
	assert.Equal(t, StockActionRestock, inv.Items[0].StockLog[0].ActionType)
	assert.Nil(t, inv.Items[1].LowStockThreshold)
}

func TestStaffSnakeCaseFallback(t *testing.T) {
	var log StaffLog
	require.NoError(t, json.Unmarshal([]byte(`{"staff_id":"st1","staff_name":"Bo","time_in":"08:00","is_present":true}`), &log))
	assert.Equal(t, "st1", log.StaffID)
	assert.Equal(t, "Bo", log.StaffName)
	assert.Equal(t, "08:00", log.TimeIn)
	assert.True(t, log.IsPresent)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("EAT", 3*3600)

	d, ok := ParseDate("2024-03-05", loc)
	require.True(t, ok)
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, loc, d.Location())

	d, ok = ParseDate("2024-03-31T22:30:00Z", loc)
	require.True(t, ok)
	assert.Equal(t, time.April, d.Month())

	_, ok = ParseDate("not-a-date", loc)
	assert.False(t, ok)
	_, ok = ParseDate("", nil)
	assert.False(t, ok)
}

func TestSnapshotApply(t *testing.T) {
	snap := NewSnapshot()
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	skipped := snap.Apply(CollectionStudents, []Document{
		{Collection: CollectionStudents, ID: "a", Payload: json.RawMessage(`{"fullName":"A"}`)},
		{Collection: CollectionStudents, ID: "b", Payload: json.RawMessage(`"oops"`)},
		{Collection: CollectionStudents, ID: "c"},
	})
	assert.ElementsMatch(t, []string{"b", "c"}, skipped)
	require.Len(t, snap.Students, 1)
	assert.Equal(t, "a", snap.Students[0].ID)
	assert.Equal(t, 1, snap.Count(CollectionStudents))

	snap.Apply(CollectionSettings, []Document{
		{ID: "new", Payload: json.RawMessage(`{"billingCycle":"TERMLY"}`), UpdatedAt: older.Add(time.Hour)},
		{ID: "old", Payload: json.RawMessage(`{"billingCycle":"MONTHLY"}`), UpdatedAt: older},
	})
	assert.Equal(t, BillingCycleTermly, snap.Settings.BillingCycle)
	assert.NotNil(t, snap.Settings.ClassGroups)
	assert.False(t, snap.Ready())

	clone := snap.Clone()
	clone.Loaded[CollectionExpenses] = true
	assert.False(t, snap.Loaded[CollectionExpenses])

	for _, c := range AllCollections {
		snap.Apply(c, nil)
	}
	assert.True(t, snap.Ready())
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("staffLogs")
	require.NoError(t, err)
	assert.Equal(t, CollectionStaffLogs, c)

	_, err = ParseCollection("grades")
	assert.Error(t, err)
}
