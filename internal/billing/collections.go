package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// MonthlyTuitionCollections sums the tuition collected in the calendar month of
// asOf. A payment counts when something was paid and either its period is the
// current month number or it was paid this month. Under MONTHLY billing the
// transport fee embedded in a transport student's payment is removed unless the
// period waived transport.
func MonthlyTuitionCollections(students []models.Student, cycle models.BillingCycle, asOf time.Time) decimal.Decimal {
	currentMonth := int(asOf.Month())
	total := decimal.Zero
	for _, student := range students {
		subtractTransport := student.HasTransport && cycle == models.BillingCycleMonthly
		for _, p := range student.FeePayments {
			if !p.AmountPaid.IsPositive() {
				continue
			}
			if p.Period != currentMonth && !inMonthOf(p.PaidDate, asOf) {
				continue
			}
			if subtractTransport && !p.IsTransportWaived {
				total = total.Add(decimal.Max(decimal.Zero, p.AmountPaid.Sub(student.TransportFee)))
				continue
			}
			total = total.Add(p.AmountPaid)
		}
	}
	return total
}

// MonthlyTransportCollections sums the transport paid in the calendar month of
// asOf by transport students, excluding skipped months.
func MonthlyTransportCollections(students []models.Student, asOf time.Time) decimal.Decimal {
	currentMonth := int(asOf.Month())
	total := decimal.Zero
	for _, student := range students {
		if !student.HasTransport {
			continue
		}
		for _, p := range student.TransportPayments {
			if !p.AmountPaid.IsPositive() || p.IsSkipped {
				continue
			}
			if p.Month != currentMonth && !inMonthOf(p.PaidDate, asOf) {
				continue
			}
			total = total.Add(p.AmountPaid)
		}
	}
	return total
}
