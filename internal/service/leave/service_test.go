package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/clock"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/cmlabs-hris/hrm-core/internal/repository/memory"
)

const (
	testEmployeeID = "emp-1"
	testManagerID  = "emp-mgr"
)

var (
	employeeActor = auth.Identity{UserID: "user-1", EmployeeID: testEmployeeID, Role: user.RoleEmployee}
	managerActor  = auth.Identity{UserID: "user-mgr", EmployeeID: testManagerID, Role: user.RoleManager}
	adminActor    = auth.Identity{UserID: "user-admin", EmployeeID: "emp-admin", Role: user.RoleAdmin}
)

type fixture struct {
	svc   *LeaveServiceImpl
	repo  leave.LeaveRequestRepository
	clock *clock.Fixed
}

func newFixture(t *testing.T, casual int) fixture {
	t.Helper()
	ctx := context.Background()

	employees := memory.NewEmployeeRepository()
	for _, id := range []string{testEmployeeID, testManagerID} {
		_, err := employees.Create(ctx, employee.Employee{ID: id, FirstName: id, Email: id + "@example.com"})
		require.NoError(t, err)
	}

	repo := memory.NewLeaveRequestRepository()
	clk := clock.NewFixed(time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC))
	allotments := leave.Allotments{leave.LeaveTypeCasual: casual, leave.LeaveTypeSick: 10}

	return fixture{
		svc:   NewLeaveService(memory.NewTransactor(), repo, memory.NewLeaveQuotaRepository(), employees, allotments, clk),
		repo:  repo,
		clock: clk,
	}
}

func casualRequest(start, end string) leave.SubmitLeaveRequest {
	return leave.SubmitLeaveRequest{
		EmployeeID: testEmployeeID,
		LeaveType:  "CASUAL",
		StartDate:  start,
		EndDate:    end,
		Reason:     "family event",
	}
}

func TestLeaveService_SubmitApproveFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	submitted, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-05"))
	require.NoError(t, err)
	assert.Equal(t, 3, submitted.DaysCount)
	assert.Equal(t, leave.StatusPending, submitted.Status)
	assert.Equal(t, f.clock.Now(), submitted.AppliedDate)

	balance, err := f.svc.Balance(ctx, employeeActor, testEmployeeID, 2024)
	require.NoError(t, err)
	casual := findBalance(t, balance, leave.LeaveTypeCasual)
	assert.Equal(t, 0, casual.Used)
	assert.Equal(t, 3, casual.Pending)
	assert.Equal(t, 2, casual.Remaining)

	f.clock.Advance(time.Hour)
	approved, err := f.svc.Approve(ctx, managerActor, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApproverID)
	assert.Equal(t, testManagerID, *approved.ApproverID)
	require.NotNil(t, approved.ApprovedDate)
	assert.Equal(t, f.clock.Now(), *approved.ApprovedDate)

	balance, err = f.svc.Balance(ctx, employeeActor, testEmployeeID, 2024)
	require.NoError(t, err)
	casual = findBalance(t, balance, leave.LeaveTypeCasual)
	assert.Equal(t, 3, casual.Used)
	assert.Equal(t, 0, casual.Pending)
	assert.Equal(t, 2, casual.Remaining)

	_, err = f.svc.Approve(ctx, managerActor, submitted.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	balance, err = f.svc.Balance(ctx, employeeActor, testEmployeeID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, findBalance(t, balance, leave.LeaveTypeCasual).Used)
}

func TestLeaveService_Submit_BalanceExceeded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	_, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-05"))
	require.NoError(t, err)

	// Pending days are reserved, so 3 + 3 > 5.
	_, err = f.svc.Submit(ctx, employeeActor, casualRequest("2024-07-01", "2024-07-03"))
	assert.ErrorIs(t, err, leave.ErrBalanceExceeded)

	_, err = f.svc.Submit(ctx, employeeActor, casualRequest("2024-07-01", "2024-07-02"))
	assert.NoError(t, err)
}

func TestLeaveService_SetQuota_PerEmployeeAllotment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	days := 2
	quota, err := f.svc.SetQuota(ctx, adminActor, leave.SetLeaveQuotaRequest{
		EmployeeID: testEmployeeID,
		LeaveType:  "casual",
		Year:       2024,
		Days:       &days,
	})
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveTypeCasual, quota.LeaveType)
	assert.Equal(t, 2, quota.Days)

	_, err = f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-05"))
	assert.ErrorIs(t, err, leave.ErrBalanceExceeded)

	managerRequest := casualRequest("2024-06-03", "2024-06-05")
	managerRequest.EmployeeID = testManagerID
	_, err = f.svc.Submit(ctx, managerActor, managerRequest)
	require.NoError(t, err)

	own, err := f.svc.Balance(ctx, employeeActor, testEmployeeID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, findBalance(t, own, leave.LeaveTypeCasual).Total)
	assert.Equal(t, 10, findBalance(t, own, leave.LeaveTypeSick).Total)

	other, err := f.svc.Balance(ctx, managerActor, testManagerID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 5, findBalance(t, other, leave.LeaveTypeCasual).Total)
	assert.Equal(t, 2, findBalance(t, other, leave.LeaveTypeCasual).Remaining)

	// The override is scoped to its year.
	next, err := f.svc.Balance(ctx, employeeActor, testEmployeeID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 5, findBalance(t, next, leave.LeaveTypeCasual).Total)
}

func TestLeaveService_SetQuota_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	days := 3

	_, err := f.svc.SetQuota(ctx, managerActor, leave.SetLeaveQuotaRequest{EmployeeID: testEmployeeID, LeaveType: "CASUAL", Year: 2024, Days: &days})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = f.svc.SetQuota(ctx, adminActor, leave.SetLeaveQuotaRequest{EmployeeID: "ghost", LeaveType: "CASUAL", Year: 2024, Days: &days})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = f.svc.SetQuota(ctx, adminActor, leave.SetLeaveQuotaRequest{EmployeeID: testEmployeeID, LeaveType: "VACATION", Year: 2024})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "leave_type")
	assert.Contains(t, verrs.ToMap(), "days")
}

func TestLeaveService_Submit_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	tests := []struct {
		name  string
		req   leave.SubmitLeaveRequest
		field string
	}{
		{"inverted range", casualRequest("2024-06-05", "2024-06-03"), "end_date"},
		{"unknown type", func() leave.SubmitLeaveRequest {
			r := casualRequest("2024-06-03", "2024-06-03")
			r.LeaveType = "SABBATICAL"
			return r
		}(), "leave_type"},
		{"empty reason", func() leave.SubmitLeaveRequest {
			r := casualRequest("2024-06-03", "2024-06-03")
			r.Reason = "  "
			return r
		}(), "reason"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, employeeActor, tt.req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}
}

func TestLeaveService_Submit_UnknownEmployee(t *testing.T) {
	f := newFixture(t, 5)
	req := casualRequest("2024-06-03", "2024-06-03")
	req.EmployeeID = "ghost"

	_, err := f.svc.Submit(context.Background(), auth.Identity{UserID: "admin", Role: user.RoleAdmin}, req)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestLeaveService_Submit_ForOtherEmployeeForbidden(t *testing.T) {
	f := newFixture(t, 5)
	req := casualRequest("2024-06-03", "2024-06-03")
	req.EmployeeID = testManagerID

	_, err := f.svc.Submit(context.Background(), employeeActor, req)
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestLeaveService_Reject_DoesNotDebit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	submitted, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-07"))
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, managerActor, leave.RejectLeaveRequest{ID: submitted.ID, Comments: "peak season"})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.Comments)
	assert.Equal(t, "peak season", *rejected.Comments)
	assert.NotNil(t, rejected.ApprovedDate)

	balance, err := f.svc.Balance(ctx, employeeActor, testEmployeeID, 2024)
	require.NoError(t, err)
	casual := findBalance(t, balance, leave.LeaveTypeCasual)
	assert.Equal(t, 0, casual.Used)
	assert.Equal(t, 5, casual.Remaining)

	_, err = f.svc.Approve(ctx, managerActor, submitted.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestLeaveService_Approve_RequiresApproverRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	submitted, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-03"))
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, employeeActor, submitted.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	adminWithoutEmployee := auth.Identity{UserID: "admin", Role: user.RoleAdmin}
	_, err = f.svc.Approve(ctx, adminWithoutEmployee, submitted.ID)
	assert.ErrorIs(t, err, leave.ErrApproverRequired)
}

func TestLeaveService_Approve_NotFound(t *testing.T) {
	f := newFixture(t, 5)
	_, err := f.svc.Approve(context.Background(), managerActor, "missing")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeaveService_Approve_ConcurrentExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	submitted, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-05"))
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Approve(ctx, managerActor, submitted.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, leave.ErrInvalidTransition):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	balance, err := f.svc.Balance(ctx, employeeActor, testEmployeeID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, findBalance(t, balance, leave.LeaveTypeCasual).Used)
}

func TestLeaveService_Submit_ConcurrentNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	const workers = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-08-01", "2024-08-02"))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, accepted)
	usage, err := f.repo.SumDays(ctx, testEmployeeID, leave.LeaveTypeCasual, 2024, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, usage.Approved+usage.Pending, 5)
}

func TestLeaveService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	pending, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-03"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, employeeActor, pending.ID))

	_, err = f.svc.Get(ctx, employeeActor, pending.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	decided, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-10", "2024-06-10"))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, managerActor, decided.ID)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, employeeActor, decided.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestLeaveService_Update_RechecksWithoutSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	submitted, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-05"))
	require.NoError(t, err)

	// Growing 3 to 5 days fits because the old 3 are not counted twice.
	updated, err := f.svc.Update(ctx, employeeActor, leave.UpdateLeaveRequest{
		ID:        submitted.ID,
		LeaveType: "CASUAL",
		StartDate: "2024-06-03",
		EndDate:   "2024-06-07",
		Reason:    "longer trip",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.DaysCount)
	assert.Equal(t, "longer trip", updated.Reason)

	_, err = f.svc.Update(ctx, employeeActor, leave.UpdateLeaveRequest{
		ID:        submitted.ID,
		LeaveType: "CASUAL",
		StartDate: "2024-06-03",
		EndDate:   "2024-06-08",
		Reason:    "even longer",
	})
	assert.ErrorIs(t, err, leave.ErrBalanceExceeded)

	_, err = f.svc.Approve(ctx, managerActor, submitted.ID)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, employeeActor, leave.UpdateLeaveRequest{
		ID:        submitted.ID,
		LeaveType: "CASUAL",
		StartDate: "2024-06-03",
		EndDate:   "2024-06-03",
		Reason:    "shorter",
	})
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestLeaveService_List_ScopesToOwnRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)

	_, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-03", "2024-06-03"))
	require.NoError(t, err)
	mgrReq := casualRequest("2024-06-04", "2024-06-04")
	mgrReq.EmployeeID = testManagerID
	_, err = f.svc.Submit(ctx, managerActor, mgrReq)
	require.NoError(t, err)

	own, total, err := f.svc.List(ctx, employeeActor, leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, own, 1)
	assert.Equal(t, testEmployeeID, own[0].EmployeeID)

	other := testManagerID
	_, _, err = f.svc.List(ctx, employeeActor, leave.LeaveRequestFilter{EmployeeID: &other})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	all, total, err := f.svc.List(ctx, managerActor, leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

func TestLeaveService_MonthlyUsage_SplitsAcrossMonths(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 12)

	submitted, err := f.svc.Submit(ctx, employeeActor, casualRequest("2024-06-28", "2024-07-02"))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, managerActor, submitted.ID)
	require.NoError(t, err)

	// Pending requests are not reported.
	_, err = f.svc.Submit(ctx, employeeActor, casualRequest("2024-09-02", "2024-09-02"))
	require.NoError(t, err)

	usage, err := f.svc.MonthlyUsage(ctx, employeeActor, testEmployeeID, 2024)
	require.NoError(t, err)
	require.Len(t, usage.Months, 12)
	assert.Equal(t, 3, usage.Months[5].Days[leave.LeaveTypeCasual])
	assert.Equal(t, 2, usage.Months[6].Total)
	assert.Equal(t, 0, usage.Months[8].Total)
}

func findBalance(t *testing.T, resp leave.BalanceResponse, lt leave.LeaveType) leave.BalanceItem {
	t.Helper()
	for _, b := range resp.Balances {
		if b.LeaveType == lt {
			return b
		}
	}
	t.Fatalf("no balance for %s", lt)
	return leave.BalanceItem{}
}
