package payroll

import (
	"github.com/shopspring/decimal"

	"mawared/internal/domain/employee"
	"mawared/internal/domain/policy"
)

// Inputs are the per-employee period aggregates the draft engine feeds
// into the pay computation.
type Inputs struct {
	AbsentDays      int
	LeaveDays       float64
	PermissionHours float64
}

// DailyRate is remuneration basis over the statutory 26-day divisor.
func DailyRate(basis decimal.Decimal) decimal.Decimal {
	return basis.Div(decimal.NewFromInt(StatutoryDivisor))
}

// ComputeItem produces one payroll row. All intermediate math runs on
// decimals and rounds once at the end.
func ComputeItem(emp employee.Employee, in Inputs, pol policy.Policy) Item {
	base := decimal.NewFromFloat(emp.BaseSalary)
	housing, other := emp.AllowanceTotals()
	basis := base.Add(housing).Add(other)
	daily := DailyRate(basis)

	absence := daily.Mul(decimal.NewFromInt(int64(in.AbsentDays)))

	// Day leave prorates the non-housing allowances, never clawing back
	// more than their full amount.
	leaveDeduction := other.
		Mul(decimal.NewFromFloat(in.LeaveDays)).
		Div(decimal.NewFromInt(StatutoryDivisor))
	if leaveDeduction.GreaterThan(other) {
		leaveDeduction = other
	}

	permissionDeduction := decimal.Zero
	if overage := in.PermissionHours - pol.MonthlyPermissionHours; overage > 0 {
		overageDays := decimal.NewFromFloat(overage).Div(decimal.NewFromFloat(pol.HoursPerDay))
		permissionDeduction = daily.Mul(overageDays)
	}

	insuranceEmployee := decimal.Zero
	insuranceEmployer := decimal.Zero
	if emp.Nationality == employee.NationalityNational {
		insuranceEmployee = base.Mul(decimal.NewFromFloat(InsuranceEmployeeRate))
		insuranceEmployer = base.Mul(decimal.NewFromFloat(InsuranceEmployerRate))
	}

	net := base.Add(housing).Add(other).
		Sub(absence).
		Sub(leaveDeduction).
		Sub(permissionDeduction).
		Sub(insuranceEmployee)

	return Item{
		EmployeeID:          emp.ID,
		BasicSalary:         round(base),
		HousingAllowances:   round(housing),
		OtherAllowances:     round(other),
		AbsenceDeduction:    round(absence),
		LeaveDeduction:      round(leaveDeduction),
		PermissionDeduction: round(permissionDeduction),
		InsuranceEmployee:   round(insuranceEmployee),
		InsuranceEmployer:   round(insuranceEmployer),
		NetSalary:           round(net),
	}
}

func round(d decimal.Decimal) float64 {
	return d.Round(MoneyPrecision).InexactFloat64()
}
