package policy

import (
	"context"
	"errors"
)

// Policy holds the globally editable statutory knobs. Everything else
// (divisor, insurance rates, indemnity tiers) is fixed by law and lives
// in package constants.
type Policy struct {
	// MonthlyPermissionHours is the short-permission hour quota per
	// employee per calendar month.
	MonthlyPermissionHours float64 `json:"monthlyPermissionHours"`
	// HoursPerDay converts permission overage hours into fractional days
	// for payroll deduction.
	HoursPerDay float64 `json:"hoursPerDay"`
}

const (
	DefaultMonthlyPermissionHours = 8
	DefaultHoursPerDay            = 8
)

func Default() Policy {
	return Policy{
		MonthlyPermissionHours: DefaultMonthlyPermissionHours,
		HoursPerDay:            DefaultHoursPerDay,
	}
}

type StoreAPI interface {
	GetPolicy(ctx context.Context) (Policy, error)
	UpdatePolicy(ctx context.Context, p Policy) error
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context) (Policy, error) {
	return s.store.GetPolicy(ctx)
}

func (s *Service) Update(ctx context.Context, p Policy) error {
	if p.MonthlyPermissionHours <= 0 {
		return errors.New("monthly permission hours must be positive")
	}
	if p.HoursPerDay <= 0 {
		return errors.New("hours per day must be positive")
	}
	return s.store.UpdatePolicy(ctx, p)
}
