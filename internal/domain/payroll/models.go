package payroll

import "time"

// Period identifies one pay cycle. At most one draft run may exist per
// period at a time.
type Period struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Cycle string `json:"cycle"`
}

func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

type Run struct {
	ID        string    `json:"id"`
	Period    Period    `json:"period"`
	Status    string    `json:"status"`
	TotalNet  float64   `json:"totalNet"`
	CreatedAt time.Time `json:"createdAt"`
}

// Item is one employee's row in a run. Immutable once the run is finalized.
type Item struct {
	ID                  string  `json:"id"`
	RunID               string  `json:"runId"`
	EmployeeID          string  `json:"employeeId"`
	BasicSalary         float64 `json:"basicSalary"`
	HousingAllowances   float64 `json:"housingAllowances"`
	OtherAllowances     float64 `json:"otherAllowances"`
	AbsenceDeduction    float64 `json:"absenceDeduction"`
	LeaveDeduction      float64 `json:"leaveDeduction"`
	PermissionDeduction float64 `json:"permissionDeduction"`
	InsuranceEmployee   float64 `json:"insuranceEmployee"`
	InsuranceEmployer   float64 `json:"insuranceEmployer"`
	NetSalary           float64 `json:"netSalary"`
}
