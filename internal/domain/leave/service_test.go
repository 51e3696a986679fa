package leave_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mawared/internal/domain/auth"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/leave"
	"mawared/internal/store"
	"mawared/internal/store/memory"
)

// Monday, pinned as "today" for every test.
var testNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

func day(yearDay int) time.Time {
	return time.Date(2026, time.March, yearDay, 0, 0, 0, 0, time.UTC)
}

func newService(t *testing.T) (*leave.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	service := leave.NewService(store, store, store).WithClock(func() time.Time { return testNow })
	return service, store
}

func seedEmployee(t *testing.T, store *memory.Store, emp employee.Employee) employee.Employee {
	t.Helper()
	if emp.ID == "" {
		emp.ID = "emp-1"
	}
	if emp.WorkWeek == 0 {
		emp.WorkWeek = employee.WorkWeekSixDay
	}
	if emp.JoinDate.IsZero() {
		emp.JoinDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	emp.Status = employee.StatusActive
	emp.Version = 1
	emp.CreatedAt = testNow
	if err := store.InsertEmployee(context.Background(), emp); err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return emp
}

func TestSubmitAnnualComputesBillableDays(t *testing.T) {
	service, store := newService(t)
	emp := seedEmployee(t, store, employee.Employee{
		Balances: employee.LeaveBalances{Annual: employee.LeaveBalance{Entitlement: 30}},
	})

	// Monday through Wednesday of the following week.
	req, events, err := service.Submit(context.Background(), leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryAnnual,
		StartDate:  day(9),
		EndDate:    day(11),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Status != leave.StatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	if req.Days != 3 {
		t.Fatalf("expected 3 billable days, got %v", req.Days)
	}
	if len(req.History) != 1 || req.History[0].Status != leave.StatusPending {
		t.Fatalf("expected one pending history entry, got %+v", req.History)
	}
	if len(events) != 1 || events[0].Type != leave.EventSubmitted {
		t.Fatalf("expected submitted event, got %+v", events)
	}
}

func TestSubmitRejectsInsufficientBalance(t *testing.T) {
	service, store := newService(t)
	emp := seedEmployee(t, store, employee.Employee{
		Balances: employee.LeaveBalances{Annual: employee.LeaveBalance{Entitlement: 2}},
	})

	_, _, err := service.Submit(context.Background(), leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryAnnual,
		StartDate:  day(9),
		EndDate:    day(11),
	})
	verr, ok := leave.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Rule != leave.RuleInsufficientBalance {
		t.Fatalf("expected insufficient_balance, got %s", verr.Rule)
	}
}

func TestSubmitCountsPendingAgainstBalance(t *testing.T) {
	service, store := newService(t)
	emp := seedEmployee(t, store, employee.Employee{
		Balances: employee.LeaveBalances{Annual: employee.LeaveBalance{Entitlement: 5}},
	})

	// First request reserves 3 of the 5 days while still pending.
	if _, _, err := service.Submit(context.Background(), leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryAnnual,
		StartDate:  day(9),
		EndDate:    day(11),
	}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, _, err := service.Submit(context.Background(), leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryAnnual,
		StartDate:  day(16),
		EndDate:    day(18),
	})
	verr, ok := leave.AsValidation(err)
	if !ok || verr.Rule != leave.RuleInsufficientBalance {
		t.Fatalf("expected insufficient_balance for overlapping reservation, got %v", err)
	}
}

func TestSubmitShortPermissionAdvanceNotice(t *testing.T) {
	service, store := newService(t)
	emp := seedEmployee(t, store, employee.Employee{})

	// Tomorrow is not enough notice.
	_, _, err := service.Submit(context.Background(), leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryShortPermission,
		StartDate:  day(3),
		Hours:      1,
	})
	verr, ok := leave.AsValidation(err)
	if !ok || verr.Rule != leave.RuleAdvanceNotice {
		t.Fatalf("expected advance_notice, got %v", err)
	}

	// The day after tomorrow is.
	if _, _, err := service.Submit(context.Background(), leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryShortPermission,
		StartDate:  day(4),
		Hours:      1,
	}); err != nil {
		t.Fatalf("expected day-after-tomorrow submit to pass: %v", err)
	}
}

func TestSubmitShortPermissionHourBounds(t *testing.T) {
	service, store := newService(t)
	emp := seedEmployee(t, store, employee.Employee{})

	for _, hours := range []float64{0, 0.5, 3} {
		_, _, err := service.Submit(context.Background(), leave.SubmitInput{
			EmployeeID: emp.ID,
			Category:   employee.CategoryShortPermission,
			StartDate:  day(4),
			Hours:      hours,
		})
		verr, ok := leave.AsValidation(err)
		if !ok || verr.Rule != leave.RuleMaxHours {
			t.Fatalf("hours=%v: expected max_hours, got %v", hours, err)
		}
	}
}

func TestSubmitShortPermissionMonthlyQuota(t *testing.T) {
	service, store := newService(t)
	emp := seedEmployee(t, store, employee.Employee{})
	ctx := context.Background()

	// 7 of the default 8 monthly hours already consumed at manager sign-off.
	for i, hours := range []float64{2, 2, 2, 1} {
		req := leave.Request{
			ID:            "consumed-" + string(rune('a'+i)),
			EmployeeID:    emp.ID,
			Category:      employee.CategoryShortPermission,
			StartDate:     day(10 + i),
			EndDate:       day(10 + i),
			Hours:         hours,
			Status:        leave.StatusManagerApproved,
			HoursConsumed: true,
			CreatedAt:     testNow,
		}
		if err := store.InsertLeaveRequest(ctx, req); err != nil {
			t.Fatalf("seed request: %v", err)
		}
	}

	_, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryShortPermission,
		StartDate:  day(20),
		Hours:      2,
	})
	verr, ok := leave.AsValidation(err)
	if !ok || verr.Rule != leave.RuleQuotaExceeded {
		t.Fatalf("expected quota_exceeded for 7+2, got %v", err)
	}

	if _, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryShortPermission,
		StartDate:  day(20),
		Hours:      1,
	}); err != nil {
		t.Fatalf("expected 7+1 to fit the quota: %v", err)
	}
}

func TestSubmitHajjRules(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	junior := seedEmployee(t, store, employee.Employee{
		ID:       "emp-junior",
		JoinDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	_, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: junior.ID,
		Category:   employee.CategoryHajj,
		StartDate:  day(9),
		EndDate:    day(20),
	})
	if verr, ok := leave.AsValidation(err); !ok || verr.Rule != leave.RuleMinTenure {
		t.Fatalf("expected min_tenure, got %v", err)
	}

	repeat := seedEmployee(t, store, employee.Employee{
		ID:       "emp-repeat",
		Balances: employee.LeaveBalances{HajjTaken: true},
	})
	_, _, err = service.Submit(ctx, leave.SubmitInput{
		EmployeeID: repeat.ID,
		Category:   employee.CategoryHajj,
		StartDate:  day(9),
		EndDate:    day(20),
	})
	if verr, ok := leave.AsValidation(err); !ok || verr.Rule != leave.RuleAlreadyTaken {
		t.Fatalf("expected already_taken, got %v", err)
	}

	eligible := seedEmployee(t, store, employee.Employee{ID: "emp-eligible"})
	_, _, err = service.Submit(ctx, leave.SubmitInput{
		EmployeeID: eligible.ID,
		Category:   employee.CategoryHajj,
		StartDate:  day(2),
		EndDate:    time.Date(2026, time.April, 7, 0, 0, 0, 0, time.UTC),
	})
	if verr, ok := leave.AsValidation(err); !ok || verr.Rule != leave.RuleMaxDuration {
		t.Fatalf("expected max_duration, got %v", err)
	}

	req, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: eligible.ID,
		Category:   employee.CategoryHajj,
		StartDate:  day(9),
		EndDate:    day(29),
	})
	if err != nil {
		t.Fatalf("eligible hajj submit: %v", err)
	}
	if req.Days <= 0 || req.Days > leave.HajjMaxDays {
		t.Fatalf("unexpected hajj day count %v", req.Days)
	}
}

func TestDayLeaveFullWorkflowCommitsAtFinalization(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	emp := seedEmployee(t, store, employee.Employee{
		Balances: employee.LeaveBalances{Annual: employee.LeaveBalance{Entitlement: 30}},
	})

	self := leave.Actor{UserID: "u-emp", EmployeeID: emp.ID, Role: auth.RoleEmployee}
	manager := leave.Actor{UserID: "u-mgr", EmployeeID: "emp-mgr", Role: auth.RoleManager}
	hr := leave.Actor{UserID: "u-hr", EmployeeID: "emp-hr", Role: auth.RoleHR}

	req, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryAnnual,
		StartDate:  day(9),
		EndDate:    day(11),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if req, _, err = service.ManagerApprove(ctx, req.ID, manager, "ok"); err != nil {
		t.Fatalf("manager approve: %v", err)
	}
	// Balance must still be untouched before finalization.
	stored, _ := store.GetEmployee(ctx, emp.ID)
	if stored.Balances.Annual.Used != 0 {
		t.Fatalf("expected no balance commit at approval, used=%v", stored.Balances.Annual.Used)
	}

	if req, _, err = service.HRApprove(ctx, req.ID, hr, ""); err != nil {
		t.Fatalf("hr approve: %v", err)
	}
	if req, _, err = service.Resume(ctx, req.ID, self, ""); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if req, _, err = service.Finalize(ctx, req.ID, hr, leave.FinalizeInput{}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if req.Status != leave.StatusHRFinalized {
		t.Fatalf("expected hr_finalized, got %s", req.Status)
	}
	if req.FinalAmount != 3 {
		t.Fatalf("expected recounted final amount 3, got %v", req.FinalAmount)
	}
	stored, _ = store.GetEmployee(ctx, emp.ID)
	if stored.Balances.Annual.Used != 3 {
		t.Fatalf("expected 3 used days after finalization, got %v", stored.Balances.Annual.Used)
	}
	if len(req.History) != 5 {
		t.Fatalf("expected 5 history entries, got %d", len(req.History))
	}
	for i := 1; i < len(req.History); i++ {
		if req.History[i].At.Before(req.History[i-1].At) {
			t.Fatal("history must be chronologically ordered")
		}
	}
}

func TestFinalizeHonorsHROverride(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	emp := seedEmployee(t, store, employee.Employee{
		Balances: employee.LeaveBalances{Annual: employee.LeaveBalance{Entitlement: 30}},
	})

	self := leave.Actor{UserID: "u-emp", EmployeeID: emp.ID, Role: auth.RoleEmployee}
	hr := leave.Actor{UserID: "u-hr", EmployeeID: "emp-hr", Role: auth.RoleHR}

	req, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryAnnual,
		StartDate:  day(9),
		EndDate:    day(13),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err = service.ManagerApprove(ctx, req.ID, hr, ""); err != nil {
		t.Fatalf("manager approve: %v", err)
	}
	if _, _, err = service.HRApprove(ctx, req.ID, hr, ""); err != nil {
		t.Fatalf("hr approve: %v", err)
	}
	if _, _, err = service.Resume(ctx, req.ID, self, ""); err != nil {
		t.Fatalf("resume: %v", err)
	}

	override := 2.0
	req, _, err = service.Finalize(ctx, req.ID, hr, leave.FinalizeInput{Amount: &override, Note: "returned early"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if req.FinalAmount != 2 {
		t.Fatalf("expected overridden amount 2, got %v", req.FinalAmount)
	}
	stored, _ := store.GetEmployee(ctx, emp.ID)
	if stored.Balances.Annual.Used != 2 {
		t.Fatalf("expected 2 used days, got %v", stored.Balances.Annual.Used)
	}
}

func TestShortPermissionConsumesAndRefundsHours(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	emp := seedEmployee(t, store, employee.Employee{})

	manager := leave.Actor{UserID: "u-mgr", EmployeeID: "emp-mgr", Role: auth.RoleManager}

	req, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryShortPermission,
		StartDate:  day(10),
		Hours:      2,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	req, _, err = service.ManagerApprove(ctx, req.ID, manager, "")
	if err != nil {
		t.Fatalf("manager approve: %v", err)
	}
	if !req.HoursConsumed {
		t.Fatal("expected hours consumed at manager approval")
	}

	// Rejection after approval refunds the hours.
	req, _, err = service.Reject(ctx, req.ID, manager, "plans changed")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if req.HoursConsumed {
		t.Fatal("expected hours refunded on rejection")
	}
}

func TestShortPermissionFinalizationLeavesBalancesAlone(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	emp := seedEmployee(t, store, employee.Employee{
		Balances: employee.LeaveBalances{Annual: employee.LeaveBalance{Entitlement: 30}},
	})

	self := leave.Actor{UserID: "u-emp", EmployeeID: emp.ID, Role: auth.RoleEmployee}
	manager := leave.Actor{UserID: "u-mgr", EmployeeID: "emp-mgr", Role: auth.RoleManager}
	hr := leave.Actor{UserID: "u-hr", EmployeeID: "emp-hr", Role: auth.RoleHR}

	req, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryShortPermission,
		StartDate:  day(10),
		Hours:      1,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err = service.ManagerApprove(ctx, req.ID, manager, ""); err != nil {
		t.Fatalf("manager approve: %v", err)
	}
	if _, _, err = service.Resume(ctx, req.ID, self, ""); err != nil {
		t.Fatalf("resume: %v", err)
	}
	req, _, err = service.Finalize(ctx, req.ID, hr, leave.FinalizeInput{})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if req.FinalAmount != 1 {
		t.Fatalf("expected final amount in hours, got %v", req.FinalAmount)
	}
	if !req.HoursConsumed {
		t.Fatal("consumed flag must survive finalization")
	}
	stored, _ := store.GetEmployee(ctx, emp.ID)
	if stored.Balances.Annual.Used != 0 {
		t.Fatalf("hourly finalization must not touch day counters, used=%v", stored.Balances.Annual.Used)
	}
}

func TestResumeByAnotherEmployeeFails(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	emp := seedEmployee(t, store, employee.Employee{
		Balances: employee.LeaveBalances{Annual: employee.LeaveBalance{Entitlement: 30}},
	})

	hr := leave.Actor{UserID: "u-hr", EmployeeID: "emp-hr", Role: auth.RoleHR}

	req, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryAnnual,
		StartDate:  day(9),
		EndDate:    day(10),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err = service.ManagerApprove(ctx, req.ID, hr, ""); err != nil {
		t.Fatalf("manager approve: %v", err)
	}
	if _, _, err = service.HRApprove(ctx, req.ID, hr, ""); err != nil {
		t.Fatalf("hr approve: %v", err)
	}

	_, _, err = service.Resume(ctx, req.ID, hr, "")
	if _, ok := leave.AsInvalidTransition(err); !ok {
		t.Fatalf("expected invalid transition for non-owner resume, got %v", err)
	}
}

// contentiousEmployeeStore reports a version conflict for the first
// UpdateEmployee calls, simulating a concurrent write landing between the
// request transition and the balance commit.
type contentiousEmployeeStore struct {
	*memory.Store
	conflicts int
	updates   int
}

func (c *contentiousEmployeeStore) UpdateEmployee(ctx context.Context, emp employee.Employee) error {
	c.updates++
	if c.conflicts > 0 {
		c.conflicts--
		return store.ErrVersionConflict
	}
	return c.Store.UpdateEmployee(ctx, emp)
}

func TestFinalizeRetriesBalanceCommitOnVersionConflict(t *testing.T) {
	mem := memory.New()
	employees := &contentiousEmployeeStore{Store: mem, conflicts: 1}
	service := leave.NewService(mem, employees, mem).WithClock(func() time.Time { return testNow })
	ctx := context.Background()
	emp := seedEmployee(t, mem, employee.Employee{
		Balances: employee.LeaveBalances{Annual: employee.LeaveBalance{Entitlement: 30}},
	})

	self := leave.Actor{UserID: "u-emp", EmployeeID: emp.ID, Role: auth.RoleEmployee}
	hr := leave.Actor{UserID: "u-hr", EmployeeID: "emp-hr", Role: auth.RoleHR}

	req, _, err := service.Submit(ctx, leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   employee.CategoryAnnual,
		StartDate:  day(9),
		EndDate:    day(11),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err = service.ManagerApprove(ctx, req.ID, hr, ""); err != nil {
		t.Fatalf("manager approve: %v", err)
	}
	if _, _, err = service.HRApprove(ctx, req.ID, hr, ""); err != nil {
		t.Fatalf("hr approve: %v", err)
	}
	if _, _, err = service.Resume(ctx, req.ID, self, ""); err != nil {
		t.Fatalf("resume: %v", err)
	}

	req, _, err = service.Finalize(ctx, req.ID, hr, leave.FinalizeInput{})
	if err != nil {
		t.Fatalf("finalize must survive one version conflict: %v", err)
	}
	if req.Status != leave.StatusHRFinalized {
		t.Fatalf("expected hr_finalized, got %s", req.Status)
	}
	if employees.updates != 2 {
		t.Fatalf("expected conflicted write plus one retry, got %d updates", employees.updates)
	}
	stored, _ := mem.GetEmployee(ctx, emp.ID)
	if stored.Balances.Annual.Used != 3 {
		t.Fatalf("expected the balance committed exactly once, used=%v", stored.Balances.Annual.Used)
	}
}

func TestSubmitUnknownCategory(t *testing.T) {
	service, store := newService(t)
	emp := seedEmployee(t, store, employee.Employee{})

	_, _, err := service.Submit(context.Background(), leave.SubmitInput{
		EmployeeID: emp.ID,
		Category:   "sabbatical",
		StartDate:  day(9),
		EndDate:    day(10),
	})
	if !errors.Is(err, leave.ErrUnknownCategory) {
		t.Fatalf("expected unknown category error, got %v", err)
	}
}
