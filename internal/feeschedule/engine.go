// Package feeschedule computes admission fee schedules: GST components,
// waiver and carry-forward adjustment, installment splitting and due-date
// materialization. The package is pure — it performs no I/O and is safe to
// call concurrently.
package feeschedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultGSTRatePercent is the rate applied for each of CGST and SGST.
var DefaultGSTRatePercent = decimal.NewFromInt(9)

// Input carries everything needed to compute an admission schedule.
type Input struct {
	// BaseFees is the sum of applicable fee line items, or
	// monthlyFees x durationMonths for board admissions.
	BaseFees        decimal.Decimal
	FeeWaiver       decimal.Decimal
	PreviousBalance decimal.Decimal
	DownPayment     decimal.Decimal

	// NumberOfInstallments is ignored for board admissions, where the
	// course duration in months takes its place.
	NumberOfInstallments int

	// TaxRatePercent applies to each of CGST and SGST. Zero means
	// DefaultGSTRatePercent.
	TaxRatePercent decimal.Decimal

	// StartDate anchors due dates; the first installment falls due one
	// calendar month after it.
	StartDate time.Time
}

// InstallmentDraft is one scheduled payment before persistence.
type InstallmentDraft struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
}

// Adjustment is the output of the waiver/carry-forward stage.
type Adjustment struct {
	TaxableAmount decimal.Decimal
	CGSTAmount    decimal.Decimal
	SGSTAmount    decimal.Decimal
	// TotalFees = taxable + cgst + sgst + previousBalance. The carried
	// balance was taxed in its own cycle and is never taxed again.
	TotalFees decimal.Decimal
}

// Schedule is the full engine output for one admission.
type Schedule struct {
	Adjustment
	// TaxRatePercent is the rate actually applied, after defaulting.
	TaxRatePercent  decimal.Decimal
	RemainingAmount decimal.Decimal
	// ExcessAmount is the surplus when the down payment exceeds the
	// total. Reported for display; it does not create a credit balance.
	ExcessAmount decimal.Decimal
	Installments []InstallmentDraft
}

// ComputeTax returns taxable x rate/100 with no rounding. Rounding policy
// belongs to the caller; keeping the components exact is what makes the
// schedule sum invariant hold downstream.
func ComputeTax(taxable, ratePercent decimal.Decimal) decimal.Decimal {
	return taxable.Mul(ratePercent.Shift(-2))
}

// Adjust applies the fee waiver and carry-forward balance. A waiver larger
// than the base fee clamps the taxable amount to zero rather than going
// negative.
func Adjust(baseFees, feeWaiver, previousBalance, ratePercent decimal.Decimal) Adjustment {
	taxable := baseFees.Sub(feeWaiver)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	cgst := ComputeTax(taxable, ratePercent)
	sgst := ComputeTax(taxable, ratePercent)

	return Adjustment{
		TaxableAmount: taxable,
		CGSTAmount:    cgst,
		SGSTAmount:    sgst,
		TotalFees:     taxable.Add(cgst).Add(sgst).Add(previousBalance),
	}
}

// Split divides remaining into count installments. All installments except
// the last are ceiled to the next whole currency unit; the last absorbs the
// residue so the amounts sum to remaining exactly. A single installment is
// passed through unrounded. When remaining is small relative to count the
// ceiled amounts exhaust it early; the tail zero-fills rather than letting
// the sum drift past remaining.
func Split(remaining decimal.Decimal, count int) ([]decimal.Decimal, error) {
	if count < 1 {
		return nil, ErrInvalidInstallmentCount
	}
	if remaining.IsNegative() {
		return nil, ErrInvalidAmount
	}

	if count == 1 {
		return []decimal.Decimal{remaining}, nil
	}

	per := remaining.Div(decimal.NewFromInt(int64(count))).Ceil()
	amounts := make([]decimal.Decimal, count)
	left := remaining
	for i := 0; i < count-1; i++ {
		amount := per
		if amount.GreaterThan(left) {
			amount = left
		}
		amounts[i] = amount
		left = left.Sub(amount)
	}
	amounts[count-1] = left

	return amounts, nil
}

// Materialize attaches permanent installment numbers and due dates one
// calendar month apart, starting one month after startDate.
func Materialize(amounts []decimal.Decimal, startDate time.Time) []InstallmentDraft {
	drafts := make([]InstallmentDraft, len(amounts))
	for i, amount := range amounts {
		drafts[i] = InstallmentDraft{
			Number:  i + 1,
			DueDate: AddCalendarMonths(startDate, i+1),
			Amount:  amount,
		}
	}
	return drafts
}

// ComputeSchedule runs the full pipeline for a one-time admission.
func ComputeSchedule(in Input) (*Schedule, error) {
	if in.BaseFees.IsNegative() || in.FeeWaiver.IsNegative() || in.PreviousBalance.IsNegative() || in.DownPayment.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if in.NumberOfInstallments < 1 {
		return nil, ErrInvalidInstallmentCount
	}

	rate := in.TaxRatePercent
	if rate.IsZero() {
		rate = DefaultGSTRatePercent
	}

	adj := Adjust(in.BaseFees, in.FeeWaiver, in.PreviousBalance, rate)

	remaining := adj.TotalFees.Sub(in.DownPayment)
	excess := decimal.Zero
	if remaining.IsNegative() {
		excess = remaining.Neg()
		remaining = decimal.Zero
	}

	amounts, err := Split(remaining, in.NumberOfInstallments)
	if err != nil {
		return nil, err
	}

	return &Schedule{
		Adjustment:      adj,
		TaxRatePercent:  rate,
		RemainingAmount: remaining,
		ExcessAmount:    excess,
		Installments:    Materialize(amounts, in.StartDate),
	}, nil
}

// MonthlyAmount returns the tax-inclusive price of one month's subject set
// for board admissions. Board months bypass Split: each month is priced
// independently from its own subject selection.
func MonthlyAmount(subjectPrices []decimal.Decimal, ratePercent decimal.Decimal) (decimal.Decimal, error) {
	if ratePercent.IsZero() {
		ratePercent = DefaultGSTRatePercent
	}

	taxable := decimal.Zero
	for _, price := range subjectPrices {
		if price.IsNegative() {
			return decimal.Zero, ErrInvalidAmount
		}
		taxable = taxable.Add(price)
	}

	cgst := ComputeTax(taxable, ratePercent)
	sgst := ComputeTax(taxable, ratePercent)
	return taxable.Add(cgst).Add(sgst), nil
}

// AddCalendarMonths advances t by n calendar months, clamping to the last
// valid day of the target month. Jan 31 + 1 month is Feb 28/29, never Mar 2.
func AddCalendarMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, min, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}
