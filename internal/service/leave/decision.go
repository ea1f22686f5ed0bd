package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
)

func (s *LeaveServiceImpl) Approve(ctx context.Context, actor auth.Identity, id string) (leave.LeaveRequestResponse, error) {
	return s.decide(ctx, actor, id, leave.StatusApproved, nil)
}

// Reject closes a PENDING request without touching the used balance.
func (s *LeaveServiceImpl) Reject(ctx context.Context, actor auth.Identity, req leave.RejectLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	var comments *string
	if req.Comments != "" {
		comments = &req.Comments
	}
	return s.decide(ctx, actor, req.ID, leave.StatusRejected, comments)
}

func (s *LeaveServiceImpl) decide(ctx context.Context, actor auth.Identity, id string, status leave.Status, comments *string) (leave.LeaveRequestResponse, error) {
	if !actor.Can(user.PermissionLeaveApprove) {
		return leave.LeaveRequestResponse{}, auth.ErrForbidden
	}
	if actor.EmployeeID == "" {
		return leave.LeaveRequestResponse{}, leave.ErrApproverRequired
	}

	unlock := s.locks.Lock(requestKey(id))
	defer unlock()

	current, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("get leave request %s: %w", id, err)
	}
	if current.Status != leave.StatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidTransition
	}

	unlockBalance := s.locks.Lock(balanceKey(current.EmployeeID, current.LeaveType, current.Year()))
	defer unlockBalance()

	var decided leave.LeaveRequest
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requests.LockBalance(ctx, current.EmployeeID, current.LeaveType, current.Year()); err != nil {
			return fmt.Errorf("lock leave balance: %w", err)
		}
		var err error
		decided, err = s.requests.Decide(ctx, id, status, actor.EmployeeID, comments, s.clock.Now())
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.InfoContext(ctx, "leave request decided",
		"leave_request_id", decided.ID,
		"status", decided.Status,
		"approver_id", actor.EmployeeID,
	)
	return leave.NewLeaveRequestResponse(decided), nil
}
