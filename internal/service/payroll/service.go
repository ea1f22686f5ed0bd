package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/clock"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/keylock"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/payslip"
)

type PayrollServiceImpl struct {
	payroll.SalaryRepository
	employees employee.EmployeeRepository
	clock     clock.Clock
	locks     *keylock.Locker
}

func NewPayrollService(
	salaryRepo payroll.SalaryRepository,
	employees employee.EmployeeRepository,
	clk clock.Clock,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		SalaryRepository: salaryRepo,
		employees:        employees,
		clock:            clk,
		locks:            keylock.New(),
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

func periodKey(employeeID string, month, year int) string {
	return fmt.Sprintf("salary:%s:%d:%d", employeeID, year, month)
}

func recordKey(id string) string {
	return "salary:" + id
}

// CreateRecord stores a PENDING salary with gross, deductions and net pay
// computed from the submitted components.
func (s *PayrollServiceImpl) CreateRecord(ctx context.Context, actor auth.Identity, req payroll.CreateSalaryRequest) (payroll.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	if !actor.Can(user.PermissionPayrollManage) {
		return payroll.SalaryRecordResponse{}, auth.ErrForbidden
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.SalaryRecordResponse{}, fmt.Errorf("get employee %s: %w", req.EmployeeID, err)
	}

	components := req.Components()
	breakdown, err := payroll.ComputeNet(components)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	now := s.clock.Now()
	record := payroll.SalaryRecord{
		EmployeeID: req.EmployeeID,
		Month:      int(req.Month),
		Year:       req.Year,
		Components: components,
		Status:     payroll.SalaryStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	record.Apply(breakdown)

	unlock := s.locks.Lock(periodKey(record.EmployeeID, record.Month, record.Year))
	defer unlock()

	created, err := s.SalaryRepository.Create(ctx, record)
	if err != nil {
		return payroll.SalaryRecordResponse{}, fmt.Errorf("create salary record: %w", err)
	}

	slog.InfoContext(ctx, "salary record created",
		"salary_record_id", created.ID,
		"employee_id", created.EmployeeID,
		"period", created.Period().Format("2006-01"),
		"net_salary", created.NetSalary.String(),
	)
	return payroll.NewSalaryRecordResponse(created), nil
}

// UpdateRecord merges the supplied components and recomputes net pay. Paid
// records are immutable.
func (s *PayrollServiceImpl) UpdateRecord(ctx context.Context, actor auth.Identity, req payroll.UpdateSalaryRequest) (payroll.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	if !actor.Can(user.PermissionPayrollManage) {
		return payroll.SalaryRecordResponse{}, auth.ErrForbidden
	}

	unlock := s.locks.Lock(recordKey(req.ID))
	defer unlock()

	current, err := s.SalaryRepository.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.SalaryRecordResponse{}, fmt.Errorf("get salary record %s: %w", req.ID, err)
	}
	if current.Status != payroll.SalaryStatusPending {
		return payroll.SalaryRecordResponse{}, payroll.ErrInvalidTransition
	}

	next := current
	req.ComponentsInput.MergeInto(&next.Components)
	breakdown, err := payroll.ComputeNet(next.Components)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	next.Apply(breakdown)
	next.UpdatedAt = s.clock.Now()

	updated, err := s.SalaryRepository.UpdatePending(ctx, next)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	return payroll.NewSalaryRecordResponse(updated), nil
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, actor auth.Identity, id string) (payroll.SalaryRecordResponse, error) {
	if !actor.Can(user.PermissionPayrollManage) {
		return payroll.SalaryRecordResponse{}, auth.ErrForbidden
	}

	unlock := s.locks.Lock(recordKey(id))
	defer unlock()

	paid, err := s.SalaryRepository.MarkPaid(ctx, id, actor.UserID, s.clock.Now())
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	slog.InfoContext(ctx, "salary record paid",
		"salary_record_id", paid.ID,
		"employee_id", paid.EmployeeID,
		"paid_by", actor.UserID,
	)
	return payroll.NewSalaryRecordResponse(paid), nil
}

func (s *PayrollServiceImpl) DeleteRecord(ctx context.Context, actor auth.Identity, id string) error {
	if !actor.Can(user.PermissionPayrollManage) {
		return auth.ErrForbidden
	}

	unlock := s.locks.Lock(recordKey(id))
	defer unlock()

	return s.SalaryRepository.DeletePending(ctx, id)
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, actor auth.Identity, id string) (payroll.SalaryRecordResponse, error) {
	record, err := s.visibleRecord(ctx, actor, id)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	return payroll.NewSalaryRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, actor auth.Identity, filter payroll.SalaryFilter) ([]payroll.SalaryRecordResponse, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	if !actor.Can(user.PermissionPayrollViewAll) {
		if filter.EmployeeID != nil && *filter.EmployeeID != actor.EmployeeID {
			return nil, 0, auth.ErrForbidden
		}
		own := actor.EmployeeID
		filter.EmployeeID = &own
	}

	records, total, err := s.SalaryRepository.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list salary records: %w", err)
	}

	out := make([]payroll.SalaryRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, payroll.NewSalaryRecordResponse(r))
	}
	return out, total, nil
}

// Payslip renders a record as PDF together with a download file name.
func (s *PayrollServiceImpl) Payslip(ctx context.Context, actor auth.Identity, id string) ([]byte, string, error) {
	record, err := s.visibleRecord(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	emp, err := s.employees.GetByID(ctx, record.EmployeeID)
	if err != nil {
		return nil, "", fmt.Errorf("get employee %s: %w", record.EmployeeID, err)
	}

	c := record.Components
	doc, err := payslip.Render(payslip.Slip{
		EmployeeName: emp.FullName(),
		EmployeeID:   emp.ID,
		Email:        emp.Email,
		Department:   emp.Department.Name,
		Position:     emp.Position.Title,
		Period:       record.Period(),
		Status:       string(record.Status),
		PayDate:      record.PayDate,
		Earnings: []payslip.Line{
			{Label: "Basic salary", Amount: c.BasicSalary},
			{Label: "HRA", Amount: c.HRA},
			{Label: "Conveyance", Amount: c.Conveyance},
			{Label: "Medical", Amount: c.Medical},
			{Label: "LTA", Amount: c.LTA},
		},
		Deductions: []payslip.Line{
			{Label: "Provident fund", Amount: c.PF},
			{Label: "Gratuity", Amount: c.Gratuity},
			{Label: "Tax", Amount: c.Tax},
			{Label: "Other deductions", Amount: c.OtherDeductions},
		},
		Gross:    record.Gross,
		Deducted: record.TotalDeductions,
		Net:      record.NetSalary,
	})
	if err != nil {
		return nil, "", fmt.Errorf("render payslip: %w", err)
	}

	name := fmt.Sprintf("payslip-%s-%s.pdf",
		strings.ToLower(strings.ReplaceAll(emp.FullName(), " ", "-")),
		record.Period().Format("2006-01"))
	return doc, name, nil
}

func (s *PayrollServiceImpl) visibleRecord(ctx context.Context, actor auth.Identity, id string) (payroll.SalaryRecord, error) {
	record, err := s.SalaryRepository.GetByID(ctx, id)
	if err != nil {
		return payroll.SalaryRecord{}, fmt.Errorf("get salary record %s: %w", id, err)
	}
	if !actor.ActsFor(record.EmployeeID, user.PermissionPayrollViewAll) {
		return payroll.SalaryRecord{}, auth.ErrForbidden
	}
	return record, nil
}
