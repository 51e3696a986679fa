package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusOnSite = "on_site"
	StatusLate   = "late"
	StatusAbsent = "absent"
	StatusRemote = "remote"
)

// Record is written by the external attendance collaborator and is a
// read-only input to payroll and settlement.
type Record struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Date       time.Time  `json:"date"`
	ClockIn    *time.Time `json:"clockIn,omitempty"`
	ClockOut   *time.Time `json:"clockOut,omitempty"`
	Status     string     `json:"status"`
	Source     string     `json:"source"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type Filter struct {
	EmployeeID string
	Status     string
	From       time.Time
	To         time.Time
}

type StoreAPI interface {
	ListAttendance(ctx context.Context, filter Filter) ([]Record, error)
	InsertAttendance(ctx context.Context, rec Record) error
}

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	return s.store.ListAttendance(ctx, filter)
}

func (s *Service) Record(ctx context.Context, rec Record) (Record, error) {
	switch rec.Status {
	case StatusOnSite, StatusLate, StatusAbsent, StatusRemote:
	default:
		return Record{}, errors.New("invalid attendance status")
	}
	if rec.EmployeeID == "" {
		return Record{}, errors.New("employee id is required")
	}
	if rec.Date.IsZero() {
		return Record{}, errors.New("date is required")
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now().UTC()
	if err := s.store.InsertAttendance(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// AbsentDays counts absent-status records for one employee in [from, to].
func (s *Service) AbsentDays(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	records, err := s.store.ListAttendance(ctx, Filter{
		EmployeeID: employeeID,
		Status:     StatusAbsent,
		From:       from,
		To:         to,
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
