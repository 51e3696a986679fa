// Package settlement computes end-of-service statements. Everything here
// is a pure preview: no employee record, balance, or persisted row is
// ever mutated.
package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"mawared/internal/domain/calendar"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/payroll"
)

const (
	ReasonResignation = "resignation"
	ReasonTermination = "termination"

	// Indemnity accrues at 15 days' pay per year for the first five
	// years and 30 days' pay per year beyond.
	accrualDaysFirstTier  = 15
	accrualDaysSecondTier = 30
	firstTierYears        = 5

	// CapMonths is the legal ceiling: 18 months of remuneration basis.
	CapMonths = 18
)

// TenureBreakdown uses the statutory 365-day year and 30-day month
// buckets, not calendar-accurate arithmetic.
type TenureBreakdown struct {
	Years        int     `json:"years"`
	Months       int     `json:"months"`
	Days         int     `json:"days"`
	TotalDays    int     `json:"totalDays"`
	DecimalYears float64 `json:"decimalYears"`
}

// Result is a computed statement; it is never stored.
type Result struct {
	EmployeeID          string          `json:"employeeId"`
	ExitDate            time.Time       `json:"exitDate"`
	Reason              string          `json:"reason"`
	RemunerationBasis   float64         `json:"remunerationBasis"`
	DailyRate           float64         `json:"dailyRate"`
	Tenure              TenureBreakdown `json:"tenure"`
	UnpaidDays          int             `json:"unpaidDays"`
	LeapDaysDropped     int             `json:"leapDaysDropped"`
	IndemnityFirstTier  float64         `json:"indemnityFirstTier"`
	IndemnitySecondTier float64         `json:"indemnitySecondTier"`
	BaseIndemnity       float64         `json:"baseIndemnity"`
	Multiplier          float64         `json:"multiplier"`
	Indemnity           float64         `json:"indemnity"`
	IsCapped            bool            `json:"isCapped"`
	LeaveEncashment     float64         `json:"leaveEncashment"`
	TotalPayable        float64         `json:"totalPayable"`
}

// Compute builds the settlement statement for one employee exit.
// unpaidDays is the already-resolved count (manual override or derived
// absence count).
func Compute(emp employee.Employee, exitDate time.Time, reason string, unpaidDays int) Result {
	basis := emp.RemunerationBasis()
	daily := payroll.DailyRate(basis)

	rawDays := 0
	if !exitDate.Before(emp.JoinDate) {
		rawDays = int(exitDate.Sub(emp.JoinDate).Hours()/24) + 1
	}
	leapDays := calendar.LeapDays(emp.JoinDate, exitDate)
	tenureDays := rawDays - leapDays - unpaidDays
	if tenureDays < 0 {
		tenureDays = 0
	}

	decimalYears := float64(tenureDays) / 365
	tenure := TenureBreakdown{
		Years:        tenureDays / 365,
		Months:       (tenureDays % 365) / 30,
		Days:         (tenureDays % 365) % 30,
		TotalDays:    tenureDays,
		DecimalYears: decimalYears,
	}

	firstTierYrs := decimalYears
	if firstTierYrs > firstTierYears {
		firstTierYrs = firstTierYears
	}
	secondTierYrs := decimalYears - firstTierYears
	if secondTierYrs < 0 {
		secondTierYrs = 0
	}

	firstTier := daily.
		Mul(decimal.NewFromFloat(firstTierYrs)).
		Mul(decimal.NewFromInt(accrualDaysFirstTier))
	secondTier := daily.
		Mul(decimal.NewFromFloat(secondTierYrs)).
		Mul(decimal.NewFromInt(accrualDaysSecondTier))
	baseIndemnity := firstTier.Add(secondTier)

	multiplier := multiplierFor(reason, decimalYears)
	indemnity := baseIndemnity.Mul(multiplier)

	capped := false
	cap := basis.Mul(decimal.NewFromInt(CapMonths))
	if indemnity.GreaterThan(cap) {
		indemnity = cap
		capped = true
	}

	// Encashment is always paid in full, outside the multiplier and cap.
	annualRemaining := emp.Balances.Annual.Entitlement - emp.Balances.Annual.Used
	if annualRemaining < 0 {
		annualRemaining = 0
	}
	encashment := daily.Mul(decimal.NewFromFloat(annualRemaining))

	return Result{
		EmployeeID:          emp.ID,
		ExitDate:            exitDate,
		Reason:              reason,
		RemunerationBasis:   round(basis),
		DailyRate:           round(daily),
		Tenure:              tenure,
		UnpaidDays:          unpaidDays,
		LeapDaysDropped:     leapDays,
		IndemnityFirstTier:  round(firstTier),
		IndemnitySecondTier: round(secondTier),
		BaseIndemnity:       round(baseIndemnity),
		Multiplier:          multiplier.InexactFloat64(),
		Indemnity:           round(indemnity),
		IsCapped:            capped,
		LeaveEncashment:     round(encashment),
		TotalPayable:        round(indemnity.Add(encashment)),
	}
}

// multiplierFor applies the statutory separation scale. Termination pays
// in full regardless of tenure; resignation is graduated.
func multiplierFor(reason string, years float64) decimal.Decimal {
	if reason == ReasonTermination {
		return decimal.NewFromInt(1)
	}
	switch {
	case years < 3:
		return decimal.Zero
	case years < 5:
		return decimal.NewFromFloat(0.5)
	case years <= 10:
		return decimal.NewFromInt(2).Div(decimal.NewFromInt(3))
	default:
		return decimal.NewFromInt(1)
	}
}

func round(d decimal.Decimal) float64 {
	return d.Round(payroll.MoneyPrecision).InexactFloat64()
}
