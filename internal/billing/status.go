package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// Payment status labels.
const (
	StatusPaidInFull     = "Paid in Full"
	StatusPartialPayment = "Partial Payment"
	StatusOutstanding    = "Outstanding"
)

// PaymentStatus is the display classification of a student's balance.
type PaymentStatus struct {
	Status string `json:"status"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
}

var (
	paidInFull     = PaymentStatus{Status: StatusPaidInFull, Color: "green", Icon: "check-circle"}
	partialPayment = PaymentStatus{Status: StatusPartialPayment, Color: "yellow", Icon: "alert-triangle"}
	outstanding    = PaymentStatus{Status: StatusOutstanding, Color: "red", Icon: "alert-triangle"}
)

// PaymentStatusFor classifies the outstanding balance of a student.
func PaymentStatusFor(student models.Student, cycle models.BillingCycle, settings models.AppSettings, asOf time.Time) PaymentStatus {
	return statusFor(student, OutstandingFromEnrollment(student, cycle, settings, asOf))
}

func statusFor(student models.Student, owed decimal.Decimal) PaymentStatus {
	switch {
	case owed.IsZero():
		return paidInFull
	case owed.IsPositive() && hasPaidAnything(student):
		return partialPayment
	default:
		return outstanding
	}
}

func hasPaidAnything(student models.Student) bool {
	for _, p := range student.FeePayments {
		if p.AmountPaid.IsPositive() {
			return true
		}
	}
	for _, p := range student.TransportPayments {
		if p.AmountPaid.IsPositive() {
			return true
		}
	}
	return false
}
