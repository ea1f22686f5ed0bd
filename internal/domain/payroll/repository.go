package payroll

import (
	"context"
	"time"
)

type SalaryRepository interface {
	// Create inserts a PENDING record; ErrSalaryRecordExists on a duplicate period.
	Create(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
	GetByID(ctx context.Context, id string) (SalaryRecord, error)
	List(ctx context.Context, filter SalaryFilter) ([]SalaryRecord, int64, error)

	// UpdatePending rewrites components and totals while PENDING, else
	// ErrInvalidTransition.
	UpdatePending(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
	MarkPaid(ctx context.Context, id string, paidBy string, at time.Time) (SalaryRecord, error)
	DeletePending(ctx context.Context, id string) error
}
