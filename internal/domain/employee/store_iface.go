package employee

import "context"

type StoreAPI interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	GetEmployee(ctx context.Context, id string) (Employee, error)
	InsertEmployee(ctx context.Context, emp Employee) error
	// UpdateEmployee applies an optimistic write: the stored version must
	// match emp.Version, and the persisted record gets emp.Version+1.
	UpdateEmployee(ctx context.Context, emp Employee) error
}
