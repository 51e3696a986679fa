package payroll_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"mawared/internal/domain/attendance"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/leave"
	"mawared/internal/domain/payroll"
	"mawared/internal/store/memory"
)

var period = payroll.Period{Year: 2026, Month: 3, Cycle: payroll.CycleMonthly}

func newService(t *testing.T) (*payroll.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return payroll.NewService(store, store, store, store, store), store
}

func seedEmployee(t *testing.T, store *memory.Store, emp employee.Employee) employee.Employee {
	t.Helper()
	if emp.ID == "" {
		emp.ID = "emp-1"
	}
	if emp.Nationality == "" {
		emp.Nationality = employee.NationalityNational
	}
	if emp.WorkWeek == 0 {
		emp.WorkWeek = employee.WorkWeekSixDay
	}
	emp.Status = employee.StatusActive
	emp.Version = 1
	emp.CreatedAt = time.Now().UTC()
	if err := store.InsertEmployee(context.Background(), emp); err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return emp
}

func TestGenerateDraftReplacesStaleDraft(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	seedEmployee(t, store, employee.Employee{BaseSalary: 2600})

	first, _, err := service.GenerateDraft(ctx, period)
	if err != nil {
		t.Fatalf("first draft: %v", err)
	}
	second, _, err := service.GenerateDraft(ctx, period)
	if err != nil {
		t.Fatalf("second draft: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("regeneration must create a fresh run")
	}

	runs, err := store.ListPayrollRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected exactly one draft after regeneration, got %d", len(runs))
	}
	if runs[0].ID != second.ID || runs[0].Status != payroll.RunStatusDraft {
		t.Fatalf("unexpected surviving run: %+v", runs[0])
	}

	// The stale draft's items must be gone with it.
	if items, _ := store.ListPayrollItems(ctx, first.ID); len(items) != 0 {
		t.Fatalf("expected stale items removed, got %d", len(items))
	}
}

func TestGenerateDraftLeavesFinalizedRunsAlone(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	seedEmployee(t, store, employee.Employee{BaseSalary: 2600})

	run, _, err := service.GenerateDraft(ctx, period)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if _, err := service.FinalizeRun(ctx, run.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if _, _, err := service.GenerateDraft(ctx, period); err != nil {
		t.Fatalf("redraft: %v", err)
	}
	runs, _ := store.ListPayrollRuns(ctx)
	if len(runs) != 2 {
		t.Fatalf("expected finalized run plus new draft, got %d", len(runs))
	}
}

func TestFinalizeRunOnlyFromDraft(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	seedEmployee(t, store, employee.Employee{BaseSalary: 2600})

	run, _, err := service.GenerateDraft(ctx, period)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if _, err := service.FinalizeRun(ctx, run.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := service.FinalizeRun(ctx, run.ID); !errors.Is(err, payroll.ErrFinalizeInvalidState) {
		t.Fatalf("expected invalid state on double finalize, got %v", err)
	}
}

func TestGenerateDraftRejectsInvalidPeriod(t *testing.T) {
	service, _ := newService(t)
	_, _, err := service.GenerateDraft(context.Background(), payroll.Period{Year: 2026, Month: 13})
	if !errors.Is(err, payroll.ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}

func TestGenerateDraftAggregatesPeriodInputs(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	emp := seedEmployee(t, store, employee.Employee{
		BaseSalary: 2600,
		Allowances: []employee.Allowance{
			{Name: "transport", Type: employee.AllowanceFixed, Value: 260},
		},
	})

	// Two absences inside the period.
	for i, d := range []int{5, 12} {
		rec := attendance.Record{
			ID:         "att-" + string(rune('a'+i)),
			EmployeeID: emp.ID,
			Date:       time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC),
			Status:     attendance.StatusAbsent,
			CreatedAt:  time.Now().UTC(),
		}
		if err := store.InsertAttendance(ctx, rec); err != nil {
			t.Fatalf("seed attendance: %v", err)
		}
	}

	// A finalized 3-day annual leave fully inside the period.
	annual := leave.Request{
		ID:          "lr-annual",
		EmployeeID:  emp.ID,
		Category:    employee.CategoryAnnual,
		StartDate:   time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC),
		FinalAmount: 3,
		Status:      leave.StatusHRFinalized,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.InsertLeaveRequest(ctx, annual); err != nil {
		t.Fatalf("seed leave: %v", err)
	}

	// Five finalized 2-hour permissions: 10 hours against an 8-hour quota.
	for i := 0; i < 5; i++ {
		date := time.Date(2026, time.March, 16+i, 0, 0, 0, 0, time.UTC)
		perm := leave.Request{
			ID:          "lr-perm-" + string(rune('a'+i)),
			EmployeeID:  emp.ID,
			Category:    employee.CategoryShortPermission,
			StartDate:   date,
			EndDate:     date,
			Hours:       2,
			FinalAmount: 2,
			Status:      leave.StatusHRFinalized,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.InsertLeaveRequest(ctx, perm); err != nil {
			t.Fatalf("seed permission: %v", err)
		}
	}

	_, items, err := service.GenerateDraft(ctx, period)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	item := items[0]

	// Daily rate is (2600+260)/26 = 110.
	if got := item.AbsenceDeduction; math.Abs(got-220) > 1e-9 {
		t.Fatalf("absence deduction: got %v, want 220", got)
	}
	// Leave prorates the 260 conditional allowance: 260*3/26 = 30.
	if got := item.LeaveDeduction; math.Abs(got-30) > 1e-9 {
		t.Fatalf("leave deduction: got %v, want 30", got)
	}
	// 2 overage hours = 0.25 day at 110.
	if got := item.PermissionDeduction; math.Abs(got-27.5) > 1e-9 {
		t.Fatalf("permission deduction: got %v, want 27.5", got)
	}
}

func TestGenerateDraftClipsBoundarySpanningLeave(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()
	emp := seedEmployee(t, store, employee.Employee{
		BaseSalary: 2600,
		Allowances: []employee.Allowance{
			{Name: "transport", Type: employee.AllowanceFixed, Value: 260},
		},
	})

	// Runs from late February into March; only the March portion counts,
	// recounted from the calendar (Mar 1-3 holds no Friday in 2026).
	spanning := leave.Request{
		ID:          "lr-span",
		EmployeeID:  emp.ID,
		Category:    employee.CategoryAnnual,
		StartDate:   time.Date(2026, time.February, 26, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		FinalAmount: 5,
		Status:      leave.StatusHRFinalized,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.InsertLeaveRequest(ctx, spanning); err != nil {
		t.Fatalf("seed leave: %v", err)
	}

	_, items, err := service.GenerateDraft(ctx, period)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	// 3 in-period days: 260*3/26 = 30, not the full finalized 5 days.
	if got := items[0].LeaveDeduction; math.Abs(got-30) > 1e-9 {
		t.Fatalf("clipped leave deduction: got %v, want 30", got)
	}
}
