// Package billing computes outstanding balances, payment status and
// current-month fee collections from mirrored student records.
//
// Every function is pure. The caller supplies asOf, whose location defines
// calendar months and the interpretation of dates without an offset.
package billing

import (
	"time"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// Term is one of the three four-month tuition terms of a school year.
type Term struct {
	Period int
	Months []int
}

// Terms maps term numbers onto calendar months.
var Terms = []Term{
	{Period: 1, Months: []int{1, 2, 3, 4}},
	{Period: 2, Months: []int{5, 6, 7, 8}},
	{Period: 3, Months: []int{9, 10, 11, 12}},
}

// TransportMonths are the calendar months in which transport is billed.
// April, August and December are never billed.
var TransportMonths = []int{1, 2, 3, 5, 6, 7, 9, 10, 11}

// TermFor returns the term with the given number.
func TermFor(period int) (Term, bool) {
	for _, term := range Terms {
		if term.Period == period {
			return term, true
		}
	}
	return Term{}, false
}

// IsTransportMonth reports whether transport is billed in month.
func IsTransportMonth(month int) bool {
	for _, m := range TransportMonths {
		if m == month {
			return true
		}
	}
	return false
}

// PeriodStart returns the first day of a billing period in the given year.
// The boolean is false for periods that do not exist under the cycle.
func PeriodStart(cycle models.BillingCycle, period, year int, loc *time.Location) (time.Time, bool) {
	if cycle == models.BillingCycleTermly {
		term, ok := TermFor(period)
		if !ok {
			return time.Time{}, false
		}
		return monthStart(year, term.Months[0], loc), true
	}
	if period < 1 || period > 12 {
		return time.Time{}, false
	}
	return monthStart(year, period, loc), true
}

// PeriodMonths is the number of calendar months a period spans.
func PeriodMonths(cycle models.BillingCycle, period int) int {
	if cycle == models.BillingCycleTermly {
		term, ok := TermFor(period)
		if !ok {
			return 0
		}
		return len(term.Months)
	}
	return 1
}

func monthStart(year, month int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
}

// admissionPeriodStart is the first day of the admission month.
func admissionPeriodStart(student models.Student, loc *time.Location) (time.Time, bool) {
	admitted, ok := models.ParseDate(student.AdmissionDate, loc)
	if !ok {
		return time.Time{}, false
	}
	return monthStart(admitted.Year(), int(admitted.Month()), loc), true
}

// inMonthOf reports whether a raw date falls in the calendar month of asOf.
// Malformed dates are never in any month.
func inMonthOf(raw string, asOf time.Time) bool {
	if raw == "" {
		return false
	}
	d, ok := models.ParseDate(raw, asOf.Location())
	if !ok {
		return false
	}
	return d.Year() == asOf.Year() && d.Month() == asOf.Month()
}
