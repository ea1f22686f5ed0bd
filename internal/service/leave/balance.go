package leave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
)

// Balance derives allotment, used, pending and remaining days for every leave
// type. A zero year means the current year.
func (s *LeaveServiceImpl) Balance(ctx context.Context, actor auth.Identity, employeeID string, year int) (leave.BalanceResponse, error) {
	if !actor.ActsFor(employeeID, user.PermissionLeaveViewAll) {
		return leave.BalanceResponse{}, auth.ErrForbidden
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("get employee %s: %w", employeeID, err)
	}
	if year == 0 {
		year = s.clock.Now().Year()
	}

	quotas, err := s.quotas.GetByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return leave.BalanceResponse{}, fmt.Errorf("get leave quotas: %w", err)
	}
	allotments := make(map[leave.LeaveType]int, len(leave.LeaveTypes))
	for _, t := range leave.LeaveTypes {
		allotments[t] = s.allotments.For(t)
	}
	for _, q := range quotas {
		allotments[q.LeaveType] = q.Days
	}

	items := make([]leave.BalanceItem, len(leave.LeaveTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range leave.LeaveTypes {
		g.Go(func() error {
			usage, err := s.requests.SumDays(gctx, employeeID, t, year, "")
			if err != nil {
				return fmt.Errorf("sum %s days: %w", t, err)
			}
			b := leave.Balance{
				EmployeeID: employeeID,
				LeaveType:  t,
				Year:       year,
				Allotment:  allotments[t],
				Used:       usage.Approved,
				Pending:    usage.Pending,
			}
			items[i] = leave.BalanceItem{
				LeaveType: t,
				Total:     b.Allotment,
				Used:      b.Used,
				Pending:   b.Pending,
				Remaining: b.Remaining(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return leave.BalanceResponse{}, err
	}

	return leave.BalanceResponse{EmployeeID: employeeID, Year: year, Balances: items}, nil
}

// MonthlyUsage spreads APPROVED days over the calendar months of year. A
// request crossing a year boundary contributes only its days inside year.
func (s *LeaveServiceImpl) MonthlyUsage(ctx context.Context, actor auth.Identity, employeeID string, year int) (leave.MonthlyUsageResponse, error) {
	if !actor.ActsFor(employeeID, user.PermissionLeaveViewAll) {
		return leave.MonthlyUsageResponse{}, auth.ErrForbidden
	}
	if year == 0 {
		year = s.clock.Now().Year()
	}

	approved := string(leave.StatusApproved)
	filter := leave.LeaveRequestFilter{EmployeeID: &employeeID, Status: &approved}

	var (
		mu     sync.Mutex
		months = make([]leave.MonthUsage, 12)
	)
	for i := range months {
		months[i] = leave.MonthUsage{Month: i + 1, Days: make(map[leave.LeaveType]int)}
	}

	// The previous year is scanned too for requests that spill into January.
	g, gctx := errgroup.WithContext(ctx)
	for _, y := range []int{year - 1, year} {
		f := filter
		f.Year = &y
		g.Go(func() error {
			requests, _, err := s.requests.List(gctx, f)
			if err != nil {
				return fmt.Errorf("list approved leave: %w", err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, r := range requests {
				for _, md := range leave.SplitByMonth(r.StartDate, r.EndDate) {
					if md.Year != year {
						continue
					}
					m := &months[md.Month-1]
					m.Days[r.LeaveType] += md.Days
					m.Total += md.Days
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return leave.MonthlyUsageResponse{}, err
	}

	return leave.MonthlyUsageResponse{EmployeeID: employeeID, Year: year, Months: months}, nil
}

// SetQuota overrides the allotment of one employee for a leave type and year.
// Existing requests are not re-checked against a lowered quota.
func (s *LeaveServiceImpl) SetQuota(ctx context.Context, actor auth.Identity, req leave.SetLeaveQuotaRequest) (leave.LeaveQuotaResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveQuotaResponse{}, err
	}
	if !actor.Can(user.PermissionLeaveManage) {
		return leave.LeaveQuotaResponse{}, auth.ErrForbidden
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveQuotaResponse{}, fmt.Errorf("get employee %s: %w", req.EmployeeID, err)
	}

	t := leave.LeaveType(req.LeaveType)
	unlock := s.locks.Lock(balanceKey(req.EmployeeID, t, req.Year))
	defer unlock()

	var saved leave.LeaveQuota
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requests.LockBalance(ctx, req.EmployeeID, t, req.Year); err != nil {
			return fmt.Errorf("lock leave balance: %w", err)
		}
		var err error
		saved, err = s.quotas.Upsert(ctx, leave.LeaveQuota{
			EmployeeID: req.EmployeeID,
			LeaveType:  t,
			Year:       req.Year,
			Days:       *req.Days,
			UpdatedAt:  s.clock.Now(),
		})
		return err
	})
	if err != nil {
		return leave.LeaveQuotaResponse{}, err
	}

	slog.InfoContext(ctx, "leave quota set", "employee_id", saved.EmployeeID, "leave_type", saved.LeaveType, "year", saved.Year, "days", saved.Days, "actor", actor.UserID)
	return leave.NewLeaveQuotaResponse(saved), nil
}
