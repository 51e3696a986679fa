package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mawared/internal/domain/leave"
)

type Notification struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

type StoreAPI interface {
	InsertNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, employeeID string) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Service records domain events as in-app notifications. Delivery
// channels (push, email) are external collaborators and are not wired
// here.
type Service struct {
	store StoreAPI
	now   func() time.Time
}

func New(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

// Dispatch persists each event for its employee. Failures are logged and
// swallowed: a lost notification must never roll back the transition
// that produced it.
func (s *Service) Dispatch(ctx context.Context, events []leave.Event) {
	for _, event := range events {
		n := Notification{
			ID:         uuid.NewString(),
			EmployeeID: event.EmployeeID,
			Type:       event.Type,
			Message:    event.Message,
			CreatedAt:  s.now().UTC(),
		}
		if err := s.store.InsertNotification(ctx, n); err != nil {
			slog.Warn("notification dispatch failed", "type", event.Type, "err", err)
		}
	}
}

func (s *Service) Notify(ctx context.Context, employeeID, ntype, message string) error {
	return s.store.InsertNotification(ctx, Notification{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Type:       ntype,
		Message:    message,
		CreatedAt:  s.now().UTC(),
	})
}

func (s *Service) List(ctx context.Context, employeeID string) ([]Notification, error) {
	return s.store.ListNotifications(ctx, employeeID)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.store.MarkNotificationRead(ctx, id)
}
