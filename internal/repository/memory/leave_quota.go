package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
)

type quotaKey struct {
	employeeID string
	leaveType  leave.LeaveType
	year       int
}

type leaveQuotaRepository struct {
	mu     sync.RWMutex
	quotas map[quotaKey]leave.LeaveQuota
}

func NewLeaveQuotaRepository() leave.LeaveQuotaRepository {
	return &leaveQuotaRepository{quotas: make(map[quotaKey]leave.LeaveQuota)}
}

func (r *leaveQuotaRepository) GetByEmployeeTypeYear(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (leave.LeaveQuota, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotas[quotaKey{employeeID, leaveType, year}]
	if !ok {
		return leave.LeaveQuota{}, leave.ErrLeaveQuotaNotFound
	}
	return q, nil
}

func (r *leaveQuotaRepository) GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.LeaveQuota, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leave.LeaveQuota, 0)
	for k, q := range r.quotas {
		if k.employeeID == employeeID && k.year == year {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveType < out[j].LeaveType })
	return out, nil
}

func (r *leaveQuotaRepository) Upsert(ctx context.Context, quota leave.LeaveQuota) (leave.LeaveQuota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quota.UpdatedAt.IsZero() {
		quota.UpdatedAt = time.Now().UTC()
	}
	r.quotas[quotaKey{quota.EmployeeID, quota.LeaveType, quota.Year}] = quota
	return quota, nil
}
