package settlement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mawared/internal/domain/attendance"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/settlement"
	"mawared/internal/store"
	"mawared/internal/store/memory"
)

func newService(t *testing.T) (*settlement.Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return settlement.NewService(st, st), st
}

func seedEmployee(t *testing.T, st *memory.Store) employee.Employee {
	t.Helper()
	emp := employee.Employee{
		ID:          "emp-1",
		Nationality: employee.NationalityNational,
		WorkWeek:    employee.WorkWeekSixDay,
		BaseSalary:  2600,
		JoinDate:    time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:      employee.StatusActive,
		Version:     1,
		CreatedAt:   time.Now().UTC(),
	}
	if err := st.InsertEmployee(context.Background(), emp); err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return emp
}

func TestPreviewRejectsUnknownReason(t *testing.T) {
	service, st := newService(t)
	seedEmployee(t, st)

	_, err := service.Preview(context.Background(), "emp-1", time.Now().UTC(), "retired", 0)
	if !errors.Is(err, settlement.ErrInvalidReason) {
		t.Fatalf("expected invalid reason, got %v", err)
	}
}

func TestPreviewRejectsExitBeforeJoin(t *testing.T) {
	service, st := newService(t)
	seedEmployee(t, st)

	exit := time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC)
	_, err := service.Preview(context.Background(), "emp-1", exit, settlement.ReasonResignation, 0)
	if !errors.Is(err, settlement.ErrExitBeforeJoin) {
		t.Fatalf("expected exit-before-join, got %v", err)
	}
}

func TestPreviewUnknownEmployee(t *testing.T) {
	service, _ := newService(t)
	_, err := service.Preview(context.Background(), "ghost", time.Now().UTC(), settlement.ReasonResignation, 0)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPreviewDerivesUnpaidDaysFromAbsences(t *testing.T) {
	service, st := newService(t)
	emp := seedEmployee(t, st)
	ctx := context.Background()

	for i, d := range []int{5, 6, 7} {
		rec := attendance.Record{
			ID:         "att-" + string(rune('a'+i)),
			EmployeeID: emp.ID,
			Date:       time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC),
			Status:     attendance.StatusAbsent,
			CreatedAt:  time.Now().UTC(),
		}
		if err := st.InsertAttendance(ctx, rec); err != nil {
			t.Fatalf("seed attendance: %v", err)
		}
	}

	exit := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	result, err := service.Preview(ctx, emp.ID, exit, settlement.ReasonTermination, 0)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if result.UnpaidDays != 3 {
		t.Fatalf("expected 3 derived unpaid days, got %d", result.UnpaidDays)
	}

	// An explicit override wins over the derived count.
	result, err = service.Preview(ctx, emp.ID, exit, settlement.ReasonTermination, 10)
	if err != nil {
		t.Fatalf("preview with override: %v", err)
	}
	if result.UnpaidDays != 10 {
		t.Fatalf("expected override of 10 unpaid days, got %d", result.UnpaidDays)
	}
}
