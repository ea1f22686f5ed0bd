package employee

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/export"
)

// exportBatch is the page size used while collecting rows for an export.
const exportBatch = 500

type EmployeeServiceImpl struct {
	employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) *EmployeeServiceImpl {
	return &EmployeeServiceImpl{EmployeeRepository: employeeRepo}
}

var _ employee.EmployeeService = (*EmployeeServiceImpl)(nil)

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("get employee %s: %w", id, err)
	}
	return employee.NewEmployeeResponse(emp), nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	employees, total, err := s.EmployeeRepository.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employee.NewEmployeeResponse(e))
	}
	return out, total, nil
}

var exportColumns = []export.Column[employee.Employee]{
	{Header: "Employee ID", Width: 38, Value: func(e employee.Employee) interface{} { return e.ID }},
	{Header: "Name", Width: 28, Value: func(e employee.Employee) interface{} { return e.FullName() }},
	{Header: "Email", Width: 30, Value: func(e employee.Employee) interface{} { return e.Email }},
	{Header: "Phone", Width: 16, Value: func(e employee.Employee) interface{} {
		if e.Phone == nil {
			return ""
		}
		return *e.Phone
	}},
	{Header: "Department", Width: 20, Value: func(e employee.Employee) interface{} { return e.Department.Name }},
	{Header: "Position", Width: 20, Value: func(e employee.Employee) interface{} { return e.Position.Title }},
	{Header: "Base Salary", Width: 14, Value: func(e employee.Employee) interface{} { return e.BaseSalary.InexactFloat64() }},
	{Header: "Hire Date", Width: 12, Value: func(e employee.Employee) interface{} {
		if e.HireDate.IsZero() {
			return ""
		}
		return e.HireDate.Format("2006-01-02")
	}},
}

// ExportEmployees ignores the filter's pagination and writes every match.
func (s *EmployeeServiceImpl) ExportEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]byte, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var rows []employee.Employee
	filter.Limit = exportBatch
	for filter.Page = 1; ; filter.Page++ {
		batch, total, err := s.EmployeeRepository.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		rows = append(rows, batch...)
		if len(batch) == 0 || int64(len(rows)) >= total {
			break
		}
	}

	doc, err := export.Sheet("Employees", exportColumns, rows)
	if err != nil {
		return nil, fmt.Errorf("write employee sheet: %w", err)
	}
	return doc, nil
}
