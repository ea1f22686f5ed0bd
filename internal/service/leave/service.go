package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/clock"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/keylock"
)

type LeaveServiceImpl struct {
	tx         database.Transactor
	requests   leave.LeaveRequestRepository
	quotas     leave.LeaveQuotaRepository
	employees  employee.EmployeeRepository
	allotments leave.Allotments
	clock      clock.Clock
	locks      *keylock.Locker
}

func NewLeaveService(
	tx database.Transactor,
	requests leave.LeaveRequestRepository,
	quotas leave.LeaveQuotaRepository,
	employees employee.EmployeeRepository,
	allotments leave.Allotments,
	clk clock.Clock,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:         tx,
		requests:   requests,
		quotas:     quotas,
		employees:  employees,
		allotments: allotments,
		clock:      clk,
		locks:      keylock.New(),
	}
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)

func requestKey(id string) string {
	return "leave:" + id
}

func balanceKey(employeeID string, t leave.LeaveType, year int) string {
	return fmt.Sprintf("balance:%s:%s:%d", employeeID, t, year)
}

// Submit creates a PENDING request after reserving its days against the
// start-year balance.
func (s *LeaveServiceImpl) Submit(ctx context.Context, actor auth.Identity, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !actor.ActsFor(req.EmployeeID, user.PermissionLeaveManage) {
		return leave.LeaveRequestResponse{}, auth.ErrForbidden
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("get employee %s: %w", req.EmployeeID, err)
	}

	request := leave.LeaveRequest{
		EmployeeID:  req.EmployeeID,
		LeaveType:   leave.LeaveType(req.LeaveType),
		StartDate:   leave.DateOnly(req.Start),
		EndDate:     leave.DateOnly(req.End),
		DaysCount:   leave.CountDays(req.Start, req.End),
		Reason:      req.Reason,
		Status:      leave.StatusPending,
		AppliedDate: s.clock.Now(),
	}

	unlock := s.locks.Lock(balanceKey(request.EmployeeID, request.LeaveType, request.Year()))
	defer unlock()

	var created leave.LeaveRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.reserve(ctx, request, ""); err != nil {
			return err
		}
		var err error
		created, err = s.requests.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.InfoContext(ctx, "leave request submitted",
		"leave_request_id", created.ID,
		"employee_id", created.EmployeeID,
		"leave_type", created.LeaveType,
		"days", created.DaysCount,
	)
	return leave.NewLeaveRequestResponse(created), nil
}

// Update rewrites a PENDING request, re-counting its days and re-checking the
// balance without counting the request against itself.
func (s *LeaveServiceImpl) Update(ctx context.Context, actor auth.Identity, req leave.UpdateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	unlock := s.locks.Lock(requestKey(req.ID))
	defer unlock()

	current, err := s.requests.GetByID(ctx, req.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("get leave request %s: %w", req.ID, err)
	}
	if !actor.ActsFor(current.EmployeeID, user.PermissionLeaveManage) {
		return leave.LeaveRequestResponse{}, auth.ErrForbidden
	}
	if current.Status != leave.StatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidTransition
	}

	next := current
	next.LeaveType = leave.LeaveType(req.LeaveType)
	next.StartDate = leave.DateOnly(req.Start)
	next.EndDate = leave.DateOnly(req.End)
	next.DaysCount = leave.CountDays(req.Start, req.End)
	next.Reason = req.Reason
	next.UpdatedAt = s.clock.Now()

	unlockBalances := s.locks.Lock(
		balanceKey(current.EmployeeID, current.LeaveType, current.Year()),
		balanceKey(next.EmployeeID, next.LeaveType, next.Year()),
	)
	defer unlockBalances()

	var updated leave.LeaveRequest
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.reserve(ctx, next, next.ID); err != nil {
			return err
		}
		var err error
		updated, err = s.requests.UpdatePending(ctx, next)
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return leave.NewLeaveRequestResponse(updated), nil
}

// Delete removes a request that is still PENDING. Decided requests stay as
// an audit record.
func (s *LeaveServiceImpl) Delete(ctx context.Context, actor auth.Identity, id string) error {
	unlock := s.locks.Lock(requestKey(id))
	defer unlock()

	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get leave request %s: %w", id, err)
	}
	if !actor.ActsFor(current.EmployeeID, user.PermissionLeaveManage) {
		return auth.ErrForbidden
	}
	if current.Status != leave.StatusPending {
		return leave.ErrInvalidTransition
	}

	unlockBalance := s.locks.Lock(balanceKey(current.EmployeeID, current.LeaveType, current.Year()))
	defer unlockBalance()

	if err := s.requests.DeletePending(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "leave request deleted", "leave_request_id", id, "actor", actor.UserID)
	return nil
}

func (s *LeaveServiceImpl) Get(ctx context.Context, actor auth.Identity, id string) (leave.LeaveRequestResponse, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("get leave request %s: %w", id, err)
	}
	if !actor.ActsFor(request.EmployeeID, user.PermissionLeaveViewAll) {
		return leave.LeaveRequestResponse{}, auth.ErrForbidden
	}
	return leave.NewLeaveRequestResponse(request), nil
}

func (s *LeaveServiceImpl) List(ctx context.Context, actor auth.Identity, filter leave.LeaveRequestFilter) ([]leave.LeaveRequestResponse, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	if !actor.Can(user.PermissionLeaveViewAll) {
		if filter.EmployeeID != nil && *filter.EmployeeID != actor.EmployeeID {
			return nil, 0, auth.ErrForbidden
		}
		own := actor.EmployeeID
		filter.EmployeeID = &own
	}

	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}

	out := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, leave.NewLeaveRequestResponse(r))
	}
	return out, total, nil
}

// reserve fails with ErrBalanceExceeded when request would push approved plus
// pending days over the allotment. Callers hold the balance key lock.
func (s *LeaveServiceImpl) reserve(ctx context.Context, request leave.LeaveRequest, excludeID string) error {
	year := request.Year()
	if err := s.requests.LockBalance(ctx, request.EmployeeID, request.LeaveType, year); err != nil {
		return fmt.Errorf("lock leave balance: %w", err)
	}

	usage, err := s.requests.SumDays(ctx, request.EmployeeID, request.LeaveType, year, excludeID)
	if err != nil {
		return fmt.Errorf("sum leave days: %w", err)
	}

	allotment, err := s.allotment(ctx, request.EmployeeID, request.LeaveType, year)
	if err != nil {
		return err
	}

	remaining := allotment - usage.Approved - usage.Pending
	if request.DaysCount > remaining {
		return fmt.Errorf("%w: requested %d day(s), %d remaining for %s %d",
			leave.ErrBalanceExceeded, request.DaysCount, max(remaining, 0), request.LeaveType, year)
	}
	return nil
}

// allotment returns the employee's quota for (t, year), falling back to the
// configured default for t.
func (s *LeaveServiceImpl) allotment(ctx context.Context, employeeID string, t leave.LeaveType, year int) (int, error) {
	quota, err := s.quotas.GetByEmployeeTypeYear(ctx, employeeID, t, year)
	switch {
	case err == nil:
		return quota.Days, nil
	case errors.Is(err, leave.ErrLeaveQuotaNotFound):
		return s.allotments.For(t), nil
	default:
		return 0, fmt.Errorf("get leave quota: %w", err)
	}
}
