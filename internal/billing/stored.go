package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// StoredOutstanding totals the outstanding amounts recorded upstream instead of
// recomputing them. Under MONTHLY billing the transport fee is removed from the
// stored tuition figure of transport students, and stored transport balances
// are added for owed months that are neither skipped nor waived.
//
// Only reconciliation uses this figure.
func StoredOutstanding(student models.Student, cycle models.BillingCycle, asOf time.Time) decimal.Decimal {
	loc := asOf.Location()
	admissionStart, ok := admissionPeriodStart(student, loc)
	if !ok {
		return decimal.Zero
	}
	owed := func(start time.Time) bool {
		return !start.Before(admissionStart) && !start.After(asOf)
	}

	total := decimal.Zero
	for _, p := range student.FeePayments {
		start, ok := PeriodStart(cycle, p.Period, asOf.Year(), loc)
		if !ok || !owed(start) {
			continue
		}
		if student.HasTransport && !p.IsTransportWaived && cycle == models.BillingCycleMonthly {
			total = total.Add(decimal.Max(decimal.Zero, p.OutstandingAmount.Sub(student.TransportFee)))
			continue
		}
		total = total.Add(p.OutstandingAmount)
	}

	if !student.HasTransport {
		return total
	}
	for _, p := range student.TransportPayments {
		if p.IsSkipped || p.IsWaived {
			continue
		}
		start, ok := PeriodStart(models.BillingCycleMonthly, p.Month, asOf.Year(), loc)
		if !ok || !owed(start) {
			continue
		}
		total = total.Add(p.OutstandingAmount)
	}
	return total
}
