package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidNationality = errors.New("nationality must be national or foreign")
	ErrInvalidWorkWeek    = errors.New("work week must be 5 or 6 days")
	ErrInvalidAllowance   = errors.New("invalid allowance")
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.store.ListEmployees(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) Create(ctx context.Context, emp Employee) (Employee, error) {
	if err := validate(emp); err != nil {
		return Employee{}, err
	}
	emp.ID = uuid.NewString()
	if emp.Status == "" {
		emp.Status = StatusActive
	}
	emp.Version = 1
	emp.CreatedAt = s.now().UTC()
	if err := s.store.InsertEmployee(ctx, emp); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

func (s *Service) Update(ctx context.Context, emp Employee) (Employee, error) {
	if err := validate(emp); err != nil {
		return Employee{}, err
	}
	if err := s.store.UpdateEmployee(ctx, emp); err != nil {
		return Employee{}, err
	}
	emp.Version++
	return emp, nil
}

func validate(emp Employee) error {
	if strings.TrimSpace(emp.FirstName) == "" || strings.TrimSpace(emp.LastName) == "" {
		return errors.New("employee name is required")
	}
	if emp.Nationality != NationalityNational && emp.Nationality != NationalityForeign {
		return ErrInvalidNationality
	}
	if emp.WorkWeek != WorkWeekFiveDay && emp.WorkWeek != WorkWeekSixDay {
		return ErrInvalidWorkWeek
	}
	if emp.BaseSalary < 0 {
		return errors.New("base salary cannot be negative")
	}
	if emp.JoinDate.IsZero() {
		return errors.New("join date is required")
	}
	for _, a := range emp.Allowances {
		if a.Type != AllowanceFixed && a.Type != AllowancePercentage {
			return fmt.Errorf("%w: %s has type %q", ErrInvalidAllowance, a.Name, a.Type)
		}
		if a.Value < 0 {
			return fmt.Errorf("%w: %s has negative value", ErrInvalidAllowance, a.Name)
		}
	}
	return nil
}
