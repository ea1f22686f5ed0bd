package leave

import (
	"context"
	"time"
)

// Usage is the committed and reserved day totals for one balance key.
type Usage struct {
	Approved int
	Pending  int
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)

	// UpdatePending rewrites the editable fields of a PENDING request.
	// ErrInvalidTransition is returned when the stored request is not PENDING.
	UpdatePending(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	// Decide moves a PENDING request to a terminal status in one conditional
	// write. ErrInvalidTransition is returned when it is no longer PENDING.
	Decide(ctx context.Context, id string, status Status, approverID string, comments *string, at time.Time) (LeaveRequest, error)

	// DeletePending removes a request only while it is PENDING.
	DeletePending(ctx context.Context, id string) error

	// SumDays totals APPROVED and PENDING days for requests starting in year,
	// skipping excludeID when it is non-empty.
	SumDays(ctx context.Context, employeeID string, leaveType LeaveType, year int, excludeID string) (Usage, error)

	// LockBalance serializes writers of one (employee, type, year) balance
	// until the surrounding transaction ends.
	LockBalance(ctx context.Context, employeeID string, leaveType LeaveType, year int) error
}

// LeaveQuotaRepository - interface for leave_quotas table
type LeaveQuotaRepository interface {
	GetByEmployeeTypeYear(ctx context.Context, employeeID string, leaveType LeaveType, year int) (LeaveQuota, error)
	GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]LeaveQuota, error)

	// Upsert replaces the days of an existing (employee, type, year) quota.
	Upsert(ctx context.Context, quota LeaveQuota) (LeaveQuota, error)
}
