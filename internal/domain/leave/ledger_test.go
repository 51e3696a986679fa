package leave

import (
	"testing"
	"time"

	"mawared/internal/domain/employee"
)

func TestPendingAmountIgnoresSettledRequests(t *testing.T) {
	requests := []Request{
		{Category: employee.CategoryAnnual, Status: StatusPending, Days: 3},
		{Category: employee.CategoryAnnual, Status: StatusManagerApproved, Days: 2},
		{Category: employee.CategoryAnnual, Status: StatusRejected, Days: 10},
		{Category: employee.CategoryAnnual, Status: StatusHRFinalized, Days: 10},
		{Category: employee.CategorySick, Status: StatusPending, Days: 1},
	}
	if got := PendingAmount(requests, employee.CategoryAnnual); got != 5 {
		t.Fatalf("expected 5 pending days, got %v", got)
	}
}

func TestAvailable(t *testing.T) {
	emp := employee.Employee{
		Balances: employee.LeaveBalances{
			Annual: employee.LeaveBalance{Entitlement: 30, Used: 10},
		},
	}
	requests := []Request{
		{Category: employee.CategoryAnnual, Status: StatusPending, Days: 4},
	}
	if got := Available(emp, requests, employee.CategoryAnnual); got != 16 {
		t.Fatalf("expected 16 available, got %v", got)
	}
	// Hour-based categories have no counter.
	if got := Available(emp, requests, employee.CategoryShortPermission); got != 0 {
		t.Fatalf("expected 0 for hourly category, got %v", got)
	}
}

func TestMonthlyUsedHoursCountsConsumedFlagOnly(t *testing.T) {
	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	requests := []Request{
		{Category: employee.CategoryShortPermission, HoursConsumed: true, Hours: 2, StartDate: march},
		{Category: employee.CategoryShortPermission, HoursConsumed: true, Hours: 1, StartDate: march.AddDate(0, 0, 5)},
		// Pending but not yet manager-approved: not consumed.
		{Category: employee.CategoryShortPermission, HoursConsumed: false, Hours: 2, StartDate: march},
		// Different month.
		{Category: employee.CategoryShortPermission, HoursConsumed: true, Hours: 2, StartDate: march.AddDate(0, 1, 0)},
	}
	if got := MonthlyUsedHours(requests, march); got != 3 {
		t.Fatalf("expected 3 consumed hours in march, got %v", got)
	}
}
