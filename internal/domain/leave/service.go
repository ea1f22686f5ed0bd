package leave

import (
	"context"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
)

// LeaveService is the leave workflow engine. Every mutating call takes the
// resolved caller explicitly.
type LeaveService interface {
	Submit(ctx context.Context, actor auth.Identity, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	Update(ctx context.Context, actor auth.Identity, req UpdateLeaveRequest) (LeaveRequestResponse, error)
	Approve(ctx context.Context, actor auth.Identity, id string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, actor auth.Identity, req RejectLeaveRequest) (LeaveRequestResponse, error)
	Delete(ctx context.Context, actor auth.Identity, id string) error

	Get(ctx context.Context, actor auth.Identity, id string) (LeaveRequestResponse, error)
	List(ctx context.Context, actor auth.Identity, filter LeaveRequestFilter) ([]LeaveRequestResponse, int64, error)
	Balance(ctx context.Context, actor auth.Identity, employeeID string, year int) (BalanceResponse, error)
	MonthlyUsage(ctx context.Context, actor auth.Identity, employeeID string, year int) (MonthlyUsageResponse, error)

	// SetQuota overrides one employee's allotment for a type and year.
	SetQuota(ctx context.Context, actor auth.Identity, req SetLeaveQuotaRequest) (LeaveQuotaResponse, error)
}
