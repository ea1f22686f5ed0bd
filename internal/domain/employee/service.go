package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]EmployeeResponse, int64, error)

	// ExportEmployees renders every employee matching filter as an XLSX workbook.
	ExportEmployees(ctx context.Context, filter EmployeeFilter) ([]byte, error)
}
