package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
)

type leaveRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]leave.LeaveRequest
}

func NewLeaveRequestRepository() leave.LeaveRequestRepository {
	return &leaveRequestRepository{requests: make(map[string]leave.LeaveRequest)}
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = newID()
	request.UpdatedAt = request.AppliedDate
	r.requests[request.ID] = request
	return request, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []leave.LeaveRequest
	for _, req := range r.requests {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(req.Status) != *filter.Status {
			continue
		}
		if filter.LeaveType != nil && string(req.LeaveType) != *filter.LeaveType {
			continue
		}
		if filter.Year != nil && req.Year() != *filter.Year {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedDate.Equal(out[j].AppliedDate) {
			return out[i].AppliedDate.After(out[j].AppliedDate)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, filter.Page, filter.Limit), int64(len(out)), nil
}

func (r *leaveRequestRepository) UpdatePending(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.requests[request.ID]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if current.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrInvalidTransition
	}
	current.LeaveType = request.LeaveType
	current.StartDate = request.StartDate
	current.EndDate = request.EndDate
	current.DaysCount = request.DaysCount
	current.Reason = request.Reason
	current.UpdatedAt = request.UpdatedAt
	r.requests[current.ID] = current
	return current, nil
}

func (r *leaveRequestRepository) Decide(ctx context.Context, id string, status leave.Status, approverID string, comments *string, at time.Time) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if current.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrInvalidTransition
	}
	current.Status = status
	current.ApproverID = &approverID
	current.Comments = comments
	current.ApprovedDate = &at
	current.UpdatedAt = at
	r.requests[id] = current
	return current, nil
}

func (r *leaveRequestRepository) DeletePending(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.requests[id]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	if current.Status != leave.StatusPending {
		return leave.ErrInvalidTransition
	}
	delete(r.requests, id)
	return nil
}

func (r *leaveRequestRepository) SumDays(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int, excludeID string) (leave.Usage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var u leave.Usage
	for _, req := range r.requests {
		if req.ID == excludeID || req.EmployeeID != employeeID || req.LeaveType != leaveType || req.Year() != year {
			continue
		}
		switch req.Status {
		case leave.StatusApproved:
			u.Approved += req.DaysCount
		case leave.StatusPending:
			u.Pending += req.DaysCount
		}
	}
	return u, nil
}

// LockBalance is a no-op; the service's in-process key lock already covers
// a single memory store.
func (r *leaveRequestRepository) LockBalance(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) error {
	return nil
}
