package settlement

import (
	"context"
	"errors"
	"time"

	"mawared/internal/domain/attendance"
	"mawared/internal/domain/employee"
)

var (
	ErrInvalidReason  = errors.New("separation reason must be resignation or termination")
	ErrExitBeforeJoin = errors.New("exit date precedes join date")
)

type Service struct {
	employees  employee.StoreAPI
	attendance attendance.StoreAPI
}

func NewService(employees employee.StoreAPI, att attendance.StoreAPI) *Service {
	return &Service{employees: employees, attendance: att}
}

// Preview computes the settlement statement. unpaidDaysOverride, when
// positive, replaces the automatic absence-derived unpaid day count.
func (s *Service) Preview(ctx context.Context, employeeID string, exitDate time.Time, reason string, unpaidDaysOverride int) (Result, error) {
	if reason != ReasonResignation && reason != ReasonTermination {
		return Result{}, ErrInvalidReason
	}

	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return Result{}, err
	}
	if exitDate.Before(emp.JoinDate) {
		return Result{}, ErrExitBeforeJoin
	}

	unpaidDays := unpaidDaysOverride
	if unpaidDays <= 0 {
		absences, err := s.attendance.ListAttendance(ctx, attendance.Filter{
			EmployeeID: employeeID,
			Status:     attendance.StatusAbsent,
			From:       emp.JoinDate,
			To:         exitDate,
		})
		if err != nil {
			return Result{}, err
		}
		unpaidDays = len(absences)
	}

	return Compute(emp, exitDate, reason, unpaidDays), nil
}
