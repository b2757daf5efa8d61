package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// WarnClassGroupNotFound marks a student whose class group is not configured.
// Tuition for such a student resolves to zero.
const WarnClassGroupNotFound = "CLASS_GROUP_NOT_FOUND"

// Warning describes input the engine tolerated but a caller may want to surface.
type Warning struct {
	Code      string `json:"code"`
	StudentID string `json:"studentId"`
	Message   string `json:"message"`
}

// PeriodLine is the school-fee computation for one fee payment record.
type PeriodLine struct {
	Period      int             `json:"period"`
	Start       *time.Time      `json:"start,omitempty"`
	Owed        bool            `json:"owed"`
	Expected    decimal.Decimal `json:"expected"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Breakdown is the per-period school-fee computation of one student.
type Breakdown struct {
	Cycle    models.BillingCycle `json:"billingCycle"`
	Lines    []PeriodLine        `json:"lines"`
	Total    decimal.Decimal     `json:"total"`
	Warnings []Warning           `json:"warnings,omitempty"`
}

// TransportOutstanding sums amountDue-amountPaid over the transport months that
// are owed as of asOf, floored at zero. A month is owed when it lies between
// the literal admission month and the current month, is a transport month and
// is neither skipped nor waived.
func TransportOutstanding(student models.Student, asOf time.Time) decimal.Decimal {
	if !student.HasTransport || len(student.TransportPayments) == 0 {
		return decimal.Zero
	}
	admitted, ok := models.ParseDate(student.AdmissionDate, asOf.Location())
	if !ok {
		return decimal.Zero
	}
	currentMonth := int(asOf.Month())
	admissionMonth := int(admitted.Month())

	sum := decimal.Zero
	for _, p := range student.TransportPayments {
		if p.IsSkipped || p.IsWaived {
			continue
		}
		if p.Month > currentMonth || p.Month < admissionMonth || !IsTransportMonth(p.Month) {
			continue
		}
		sum = sum.Add(p.AmountDue.Sub(p.AmountPaid))
	}
	return decimal.Max(decimal.Zero, sum)
}

// SchoolFeesBreakdown recomputes tuition outstanding per fee payment record
// against the expected tuition, ignoring the stored outstanding figures.
func SchoolFeesBreakdown(student models.Student, cycle models.BillingCycle, settings models.AppSettings, asOf time.Time) Breakdown {
	result := Breakdown{Cycle: cycle, Total: decimal.Zero}
	loc := asOf.Location()

	fee, warn := monthlyRate(student, settings)
	if warn != nil {
		result.Warnings = append(result.Warnings, *warn)
	}
	admissionStart, admissionOK := admissionPeriodStart(student, loc)

	for _, p := range student.FeePayments {
		line := PeriodLine{
			Period:      p.Period,
			Expected:    decimal.Zero,
			Paid:        p.AmountPaid,
			Outstanding: decimal.Zero,
		}
		start, ok := PeriodStart(cycle, p.Period, asOf.Year(), loc)
		if ok {
			line.Start = &start
		}
		line.Owed = ok && admissionOK && !start.Before(admissionStart) && !start.After(asOf)
		if line.Owed {
			line.Expected = expectedTuition(student, cycle, p.Period, fee)
			line.Outstanding = decimal.Max(decimal.Zero, line.Expected.Sub(p.AmountPaid))
			result.Total = result.Total.Add(line.Outstanding)
		}
		result.Lines = append(result.Lines, line)
	}
	return result
}

// SchoolFeesOutstanding is the total of SchoolFeesBreakdown.
func SchoolFeesOutstanding(student models.Student, cycle models.BillingCycle, settings models.AppSettings, asOf time.Time) decimal.Decimal {
	return SchoolFeesBreakdown(student, cycle, settings, asOf).Total
}

// OutstandingFromEnrollment is the amount a student owes from admission to asOf.
func OutstandingFromEnrollment(student models.Student, cycle models.BillingCycle, settings models.AppSettings, asOf time.Time) decimal.Decimal {
	return SchoolFeesOutstanding(student, cycle, settings, asOf).Add(TransportOutstanding(student, asOf))
}

// Result bundles every per-student figure so callers compute the breakdown once.
type Result struct {
	SchoolFees decimal.Decimal `json:"schoolFees"`
	Transport  decimal.Decimal `json:"transport"`
	Total      decimal.Decimal `json:"total"`
	Status     PaymentStatus   `json:"status"`
	Breakdown  Breakdown       `json:"breakdown"`
}

// Evaluate runs every per-student calculation for asOf.
func Evaluate(student models.Student, cycle models.BillingCycle, settings models.AppSettings, asOf time.Time) Result {
	breakdown := SchoolFeesBreakdown(student, cycle, settings, asOf)
	transport := TransportOutstanding(student, asOf)
	total := breakdown.Total.Add(transport)
	return Result{
		SchoolFees: breakdown.Total,
		Transport:  transport,
		Total:      total,
		Status:     statusFor(student, total),
		Breakdown:  breakdown,
	}
}

// monthlyRate resolves the tuition rate a student is billed at. A set custom
// fee wins over the class group.
func monthlyRate(student models.Student, settings models.AppSettings) (decimal.Decimal, *Warning) {
	if hasCustomFee(student) {
		return student.CustomSchoolFee, nil
	}
	group, ok := settings.ClassGroups.Resolve(student.ClassGroup)
	if !ok {
		return decimal.Zero, &Warning{
			Code:      WarnClassGroupNotFound,
			StudentID: student.ID,
			Message:   fmt.Sprintf("class group %q is not configured", student.ClassGroup),
		}
	}
	return group.StandardFee, nil
}

func hasCustomFee(student models.Student) bool {
	return student.HasCustomFees && !student.CustomSchoolFee.IsZero()
}

// expectedTuition scales the monthly class rate to the period length. Custom
// fees are used verbatim whatever the cycle.
func expectedTuition(student models.Student, cycle models.BillingCycle, period int, rate decimal.Decimal) decimal.Decimal {
	if hasCustomFee(student) {
		return rate
	}
	return rate.Mul(decimal.NewFromInt(int64(PeriodMonths(cycle, period))))
}
