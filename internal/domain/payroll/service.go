package payroll

import (
	"context"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
)

type PayrollService interface {
	CreateRecord(ctx context.Context, actor auth.Identity, req CreateSalaryRequest) (SalaryRecordResponse, error)
	UpdateRecord(ctx context.Context, actor auth.Identity, req UpdateSalaryRequest) (SalaryRecordResponse, error)
	MarkPaid(ctx context.Context, actor auth.Identity, id string) (SalaryRecordResponse, error)
	DeleteRecord(ctx context.Context, actor auth.Identity, id string) error

	GetRecord(ctx context.Context, actor auth.Identity, id string) (SalaryRecordResponse, error)
	ListRecords(ctx context.Context, actor auth.Identity, filter SalaryFilter) ([]SalaryRecordResponse, int64, error)

	// Payslip renders the record as a PDF and returns it with a file name.
	Payslip(ctx context.Context, actor auth.Identity, id string) ([]byte, string, error)
}
