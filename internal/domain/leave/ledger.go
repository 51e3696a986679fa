package leave

import (
	"time"

	"mawared/internal/domain/employee"
)

// The ledger is pure bookkeeping over the employee's counters and the
// request population. Used counters mutate only at finalization (day
// categories) or manager approval (short-permission hours); everything
// else here is recomputed on read.

// PendingAmount sums the day/hour amounts of all in-flight requests for
// one category. Rejected and finalized requests reserve nothing.
func PendingAmount(requests []Request, category string) float64 {
	var total float64
	for _, req := range requests {
		if req.Category != category || !req.InFlight() {
			continue
		}
		total += req.Amount()
	}
	return total
}

// Available returns entitlement − used − pending for a day category.
func Available(emp employee.Employee, requests []Request, category string) float64 {
	counter, ok := emp.Balances.Counter(category)
	if !ok {
		return 0
	}
	return counter.Entitlement - counter.Used - PendingAmount(requests, category)
}

// MonthlyUsedHours sums short-permission hours already consumed against
// the quota for the calendar month containing at. Consumption happens at
// manager approval, so the flag, not the status, is authoritative.
func MonthlyUsedHours(requests []Request, at time.Time) float64 {
	var total float64
	for _, req := range requests {
		if req.Category != employee.CategoryShortPermission || !req.HoursConsumed {
			continue
		}
		if req.StartDate.Year() == at.Year() && req.StartDate.Month() == at.Month() {
			total += req.Hours
		}
	}
	return total
}

// BalanceView is the per-category read model served to clients.
type BalanceView struct {
	Category    string  `json:"category"`
	Entitlement float64 `json:"entitlement"`
	Used        float64 `json:"used"`
	Pending     float64 `json:"pending"`
	Available   float64 `json:"available"`
}

func BalanceViews(emp employee.Employee, requests []Request) []BalanceView {
	categories := []string{employee.CategoryAnnual, employee.CategorySick, employee.CategoryEmergency}
	views := make([]BalanceView, 0, len(categories))
	for _, category := range categories {
		counter, _ := emp.Balances.Counter(category)
		pending := PendingAmount(requests, category)
		views = append(views, BalanceView{
			Category:    category,
			Entitlement: counter.Entitlement,
			Used:        counter.Used,
			Pending:     pending,
			Available:   counter.Entitlement - counter.Used - pending,
		})
	}
	return views
}
