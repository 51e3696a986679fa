package payroll

const (
	RunStatusDraft     = "draft"
	RunStatusFinalized = "finalized"

	CycleMonthly = "monthly"

	// StatutoryDivisor converts monthly remuneration into a daily rate.
	StatutoryDivisor = 26

	// Social-insurance percentages of base salary, nationals only.
	InsuranceEmployeeRate = 0.105
	InsuranceEmployerRate = 0.115

	// MoneyPrecision is the rounding scale for all currency amounts.
	MoneyPrecision = 3
)
