package payroll

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/clock"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-core/internal/repository/memory"
)

const testEmployeeID = "emp-1"

var (
	adminActor    = auth.Identity{UserID: "user-admin", EmployeeID: "emp-admin", Role: user.RoleAdmin}
	employeeActor = auth.Identity{UserID: "user-1", EmployeeID: testEmployeeID, Role: user.RoleEmployee}
)

func newTestService(t *testing.T) (*PayrollServiceImpl, *clock.Fixed) {
	t.Helper()
	employees := memory.NewEmployeeRepository()
	_, err := employees.Create(context.Background(), employee.Employee{
		ID:         testEmployeeID,
		FirstName:  "Ana",
		LastName:   "Silva",
		Email:      "ana@example.com",
		Department: employee.Department{ID: "d1", Name: "Engineering"},
	})
	require.NoError(t, err)

	clk := clock.NewFixed(time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC))
	return NewPayrollService(memory.NewSalaryRepository(), employees, clk), clk
}

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func juneSalary() payroll.CreateSalaryRequest {
	return payroll.CreateSalaryRequest{
		EmployeeID: testEmployeeID,
		Month:      6,
		Year:       2024,
		ComponentsInput: payroll.ComponentsInput{
			BasicSalary: amount(50000),
			HRA:         amount(10000),
			PF:          amount(6000),
			Tax:         amount(4000),
		},
	}
}

func TestPayrollService_CreateMarkPaidFlow(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(t)

	created, err := svc.CreateRecord(ctx, adminActor, juneSalary())
	require.NoError(t, err)
	assert.Equal(t, payroll.SalaryStatusPending, created.Status)
	assert.True(t, created.GrossSalary.Equal(decimal.NewFromInt(60000)))
	assert.True(t, created.TotalDeductions.Equal(decimal.NewFromInt(10000)))
	assert.True(t, created.NetSalary.Equal(decimal.NewFromInt(50000)), "net = %s", created.NetSalary)
	assert.Equal(t, "June", created.MonthName)

	clk.Advance(24 * time.Hour)
	paid, err := svc.MarkPaid(ctx, adminActor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.SalaryStatusPaid, paid.Status)
	require.NotNil(t, paid.PayDate)
	assert.Equal(t, clk.Now(), *paid.PayDate)
	require.NotNil(t, paid.PaidBy)
	assert.Equal(t, adminActor.UserID, *paid.PaidBy)

	_, err = svc.UpdateRecord(ctx, adminActor, payroll.UpdateSalaryRequest{
		ID:              created.ID,
		ComponentsInput: payroll.ComponentsInput{Tax: amount(1000)},
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)

	_, err = svc.MarkPaid(ctx, adminActor, created.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)

	err = svc.DeleteRecord(ctx, adminActor, created.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidTransition)
}

func TestPayrollService_CreateRecord_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.CreateRecord(ctx, adminActor, juneSalary())
	require.NoError(t, err)

	_, err = svc.CreateRecord(ctx, adminActor, juneSalary())
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordExists)
}

func TestPayrollService_CreateRecord_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CreateRecord(ctx, adminActor, juneSalary()); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestPayrollService_CreateRecord_Negative(t *testing.T) {
	svc, _ := newTestService(t)
	req := juneSalary()
	req.Tax = amount(-1)

	_, err := svc.CreateRecord(context.Background(), adminActor, req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "tax")
}

func TestPayrollService_CreateRecord_DerivedFieldRejected(t *testing.T) {
	svc, _ := newTestService(t)
	req := juneSalary()
	req.NetSalary = 99999

	_, err := svc.CreateRecord(context.Background(), adminActor, req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "net_salary")
}

func TestPayrollService_CreateRecord_Forbidden(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateRecord(context.Background(), employeeActor, juneSalary())
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestPayrollService_UpdateRecord_Recomputes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.CreateRecord(ctx, adminActor, juneSalary())
	require.NoError(t, err)

	updated, err := svc.UpdateRecord(ctx, adminActor, payroll.UpdateSalaryRequest{
		ID:              created.ID,
		ComponentsInput: payroll.ComponentsInput{OtherDeductions: amount(70000)},
	})
	require.NoError(t, err)
	assert.True(t, updated.BasicSalary.Equal(decimal.NewFromInt(50000)))
	assert.True(t, updated.TotalDeductions.Equal(decimal.NewFromInt(80000)))
	assert.True(t, updated.NetSalary.IsZero(), "net pay is floored at zero")
}

func TestPayrollService_Visibility(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.CreateRecord(ctx, adminActor, juneSalary())
	require.NoError(t, err)

	_, err = svc.GetRecord(ctx, employeeActor, created.ID)
	assert.NoError(t, err)

	stranger := auth.Identity{UserID: "user-2", EmployeeID: "emp-2", Role: user.RoleEmployee}
	_, err = svc.GetRecord(ctx, stranger, created.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	list, total, err := svc.ListRecords(ctx, stranger, payroll.SalaryFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestPayrollService_Payslip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.CreateRecord(ctx, adminActor, juneSalary())
	require.NoError(t, err)

	doc, name, err := svc.Payslip(ctx, employeeActor, created.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
	assert.Equal(t, "payslip-ana-silva-2024-06.pdf", name)
}
