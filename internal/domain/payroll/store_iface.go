package payroll

import "context"

type StoreAPI interface {
	ListPayrollRuns(ctx context.Context) ([]Run, error)
	GetPayrollRun(ctx context.Context, id string) (Run, error)
	// FindPayrollRun locates a run by period and status.
	FindPayrollRun(ctx context.Context, period Period, status string) (Run, error)
	InsertPayrollRun(ctx context.Context, run Run) error
	UpdatePayrollRun(ctx context.Context, run Run) error
	// DeletePayrollRun removes a run and all of its items.
	DeletePayrollRun(ctx context.Context, id string) error
	ListPayrollItems(ctx context.Context, runID string) ([]Item, error)
	InsertPayrollItems(ctx context.Context, items []Item) error
}
