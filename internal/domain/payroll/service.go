package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mawared/internal/domain/attendance"
	"mawared/internal/domain/calendar"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/leave"
	"mawared/internal/domain/policy"
	"mawared/internal/store"
)

type Service struct {
	store      StoreAPI
	employees  employee.StoreAPI
	leaves     leave.StoreAPI
	attendance attendance.StoreAPI
	policies   policy.StoreAPI
	now        func() time.Time
}

func NewService(st StoreAPI, employees employee.StoreAPI, leaves leave.StoreAPI, att attendance.StoreAPI, policies policy.StoreAPI) *Service {
	return &Service{
		store:      st,
		employees:  employees,
		leaves:     leaves,
		attendance: att,
		policies:   policies,
		now:        time.Now,
	}
}

func (s *Service) ListRuns(ctx context.Context) ([]Run, error) {
	return s.store.ListPayrollRuns(ctx)
}

func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	return s.store.GetPayrollRun(ctx, id)
}

func (s *Service) Items(ctx context.Context, runID string) ([]Item, error) {
	return s.store.ListPayrollItems(ctx, runID)
}

// GenerateDraft computes one item per employee for the period and stores
// them under a fresh draft run. A stale draft for the same period is
// discarded first; the delete and the insert are two separate store calls
// with no atomicity across them, matching the source system's behavior.
// Finalized runs for the period are never touched.
func (s *Service) GenerateDraft(ctx context.Context, period Period) (Run, []Item, error) {
	if period.Month < 1 || period.Month > 12 || period.Year < 2000 {
		return Run{}, nil, fmt.Errorf("%w: %d-%02d", ErrInvalidPeriod, period.Year, period.Month)
	}
	if period.Cycle == "" {
		period.Cycle = CycleMonthly
	}

	if stale, err := s.store.FindPayrollRun(ctx, period, RunStatusDraft); err == nil {
		if err := s.store.DeletePayrollRun(ctx, stale.ID); err != nil {
			return Run{}, nil, err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return Run{}, nil, err
	}

	pol, err := s.policies.GetPolicy(ctx)
	if err != nil {
		return Run{}, nil, err
	}
	holidays, err := s.leaves.ListHolidays(ctx)
	if err != nil {
		return Run{}, nil, err
	}
	holidaySet := calendar.NewHolidaySet(holidays)
	staff, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return Run{}, nil, err
	}

	run := Run{
		ID:        uuid.NewString(),
		Period:    period,
		Status:    RunStatusDraft,
		CreatedAt: s.now().UTC(),
	}

	total := decimal.Zero
	items := make([]Item, 0, len(staff))
	for _, emp := range staff {
		inputs, err := s.periodInputs(ctx, emp, period, holidaySet)
		if err != nil {
			return Run{}, nil, err
		}
		item := ComputeItem(emp, inputs, pol)
		item.ID = uuid.NewString()
		item.RunID = run.ID
		items = append(items, item)
		total = total.Add(decimal.NewFromFloat(item.NetSalary))
	}
	run.TotalNet = total.Round(MoneyPrecision).InexactFloat64()

	if err := s.store.InsertPayrollRun(ctx, run); err != nil {
		return Run{}, nil, err
	}
	if err := s.store.InsertPayrollItems(ctx, items); err != nil {
		return Run{}, nil, err
	}
	return run, items, nil
}

// FinalizeRun moves a draft to finalized; items are immutable afterwards.
func (s *Service) FinalizeRun(ctx context.Context, runID string) (Run, error) {
	run, err := s.store.GetPayrollRun(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	if run.Status != RunStatusDraft {
		return Run{}, ErrFinalizeInvalidState
	}
	run.Status = RunStatusFinalized
	if err := s.store.UpdatePayrollRun(ctx, run); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *Service) periodInputs(ctx context.Context, emp employee.Employee, period Period, holidays calendar.HolidaySet) (Inputs, error) {
	var in Inputs
	start, end := period.Start(), period.End()

	absences, err := s.attendance.ListAttendance(ctx, attendance.Filter{
		EmployeeID: emp.ID,
		Status:     attendance.StatusAbsent,
		From:       start,
		To:         end,
	})
	if err != nil {
		return in, err
	}
	in.AbsentDays = len(absences)

	finalized, err := s.leaves.ListLeaveRequests(ctx, leave.Filter{
		EmployeeID: emp.ID,
		Statuses:   []string{leave.StatusHRFinalized},
	})
	if err != nil {
		return in, err
	}

	excludeSaturday := emp.WorkWeek == employee.WorkWeekFiveDay
	for _, req := range finalized {
		switch req.Category {
		case employee.CategoryShortPermission:
			if !req.StartDate.Before(start) && !req.StartDate.After(end) {
				in.PermissionHours += req.FinalAmount
			}
		default:
			if req.EndDate.Before(start) || req.StartDate.After(end) {
				continue
			}
			if !req.StartDate.Before(start) && !req.EndDate.After(end) {
				in.LeaveDays += req.FinalAmount
				continue
			}
			// Requests spanning the period boundary are clipped and
			// recounted for the in-period portion.
			from, to := req.StartDate, req.EndDate
			if from.Before(start) {
				from = start
			}
			if to.After(end) {
				to = end
			}
			in.LeaveDays += float64(calendar.BillableDays(from, to, excludeSaturday, holidays))
		}
	}
	return in, nil
}
