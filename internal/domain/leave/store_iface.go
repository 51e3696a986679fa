package leave

import (
	"context"

	"mawared/internal/domain/calendar"
)

type StoreAPI interface {
	ListLeaveRequests(ctx context.Context, filter Filter) ([]Request, error)
	GetLeaveRequest(ctx context.Context, id string) (Request, error)
	InsertLeaveRequest(ctx context.Context, req Request) error
	// UpdateLeaveRequest persists req only if the stored status still
	// equals expectStatus; otherwise it fails with a status conflict.
	UpdateLeaveRequest(ctx context.Context, req Request, expectStatus string) error

	ListHolidays(ctx context.Context) ([]calendar.Holiday, error)
	InsertHoliday(ctx context.Context, h calendar.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}
