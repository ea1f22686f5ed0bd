package leave

import "errors"

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInvalidTransition    = errors.New("leave request is no longer pending")
	ErrBalanceExceeded      = errors.New("requested days exceed remaining leave balance")
	ErrApproverRequired     = errors.New("approver must be linked to an employee record")
	ErrLeaveQuotaNotFound   = errors.New("leave quota not found")
)
