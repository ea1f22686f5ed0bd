package employee

import "context"

// EmployeeRepository is the read side of the employee directory that the
// workflows consult to validate employee references.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
}
