package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	NationalityNational = "national"
	NationalityForeign  = "foreign"

	// Work-week patterns. Friday is always a rest day; five-day-week
	// employees rest on Saturday as well.
	WorkWeekFiveDay = 5
	WorkWeekSixDay  = 6

	AllowanceFixed      = "fixed"
	AllowancePercentage = "percentage"

	StatusActive  = "active"
	StatusOnLeave = "on_leave"
	StatusExited  = "exited"
)

// Day-based leave categories tracked on the balance record. Short
// permission is hour-based and governed by the monthly policy quota,
// not by an entitlement counter.
const (
	CategoryAnnual          = "annual"
	CategorySick            = "sick"
	CategoryEmergency       = "emergency"
	CategoryHajj            = "hajj"
	CategoryShortPermission = "short_permission"
)

type Allowance struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Value         float64 `json:"value"`
	Unconditional bool    `json:"unconditional"`
}

type LeaveBalance struct {
	Entitlement float64 `json:"entitlement"`
	Used        float64 `json:"used"`
}

type LeaveBalances struct {
	Annual    LeaveBalance `json:"annual"`
	Sick      LeaveBalance `json:"sick"`
	Emergency LeaveBalance `json:"emergency"`
	HajjTaken bool         `json:"hajjTaken"`
}

// Counter returns the mutable balance counter for a day-based category.
// Hajj and short permission have no counter and return false.
func (b *LeaveBalances) Counter(category string) (*LeaveBalance, bool) {
	switch category {
	case CategoryAnnual:
		return &b.Annual, true
	case CategorySick:
		return &b.Sick, true
	case CategoryEmergency:
		return &b.Emergency, true
	default:
		return nil, false
	}
}

type Employee struct {
	ID          string        `json:"id"`
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	Email       string        `json:"email"`
	Nationality string        `json:"nationality"`
	WorkWeek    int           `json:"workWeek"`
	JoinDate    time.Time     `json:"joinDate"`
	BaseSalary  float64       `json:"baseSalary"`
	Allowances  []Allowance   `json:"allowances"`
	Balances    LeaveBalances `json:"balances"`
	Status      string        `json:"status"`
	// Version guards concurrent balance updates; the store rejects writes
	// carrying a stale version.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// AllowanceAmount expands an allowance to an absolute amount. Percentage
// allowances are valued against the base salary.
func (e Employee) AllowanceAmount(a Allowance) decimal.Decimal {
	value := decimal.NewFromFloat(a.Value)
	if a.Type == AllowancePercentage {
		return decimal.NewFromFloat(e.BaseSalary).Mul(value).Div(decimal.NewFromInt(100))
	}
	return value
}

// AllowanceTotals splits the expanded allowances into the unconditional
// (housing-type) total and the rest.
func (e Employee) AllowanceTotals() (housing, other decimal.Decimal) {
	for _, a := range e.Allowances {
		amount := e.AllowanceAmount(a)
		if a.Unconditional {
			housing = housing.Add(amount)
		} else {
			other = other.Add(amount)
		}
	}
	return housing, other
}

// RemunerationBasis is base salary plus all allowances, the figure daily
// rates are derived from.
func (e Employee) RemunerationBasis() decimal.Decimal {
	housing, other := e.AllowanceTotals()
	return decimal.NewFromFloat(e.BaseSalary).Add(housing).Add(other)
}

// TenureYears returns completed decimal years of service at the given
// date, on the statutory 365-day year.
func (e Employee) TenureYears(at time.Time) float64 {
	if at.Before(e.JoinDate) {
		return 0
	}
	days := at.Sub(e.JoinDate).Hours() / 24
	return days / 365
}
