package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/clock"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/keylock"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employees employee.EmployeeRepository
	policy    attendance.Policy
	clock     clock.Clock
	locks     *keylock.Locker
}

func NewAttendanceService(
	repo attendance.AttendanceRepository,
	employees employee.EmployeeRepository,
	policy attendance.Policy,
	clk clock.Clock,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		AttendanceRepository: repo,
		employees:            employees,
		policy:               policy,
		clock:                clk,
		locks:                keylock.New(),
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

func dayKey(employeeID string, date time.Time) string {
	return "attendance:" + employeeID + ":" + date.Format(time.DateOnly)
}

// CheckIn stamps today's record. A day that already has a check-in is a
// conflict, whatever its status.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, actor auth.Identity, employeeID string) (attendance.AttendanceResponse, error) {
	if !actor.ActsFor(employeeID, user.PermissionAttendanceManage) {
		return attendance.AttendanceResponse{}, auth.ErrForbidden
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("get employee %s: %w", employeeID, err)
	}

	now := s.clock.Now()
	today := s.policy.WorkDate(now)
	status := s.policy.Classify(now)

	unlock := s.locks.Lock(dayKey(employeeID, today))
	defer unlock()

	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	switch {
	case err == nil:
		if existing.CheckIn != nil {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		// A pre-created record (e.g. marked ABSENT) is upgraded in place.
		// HALF_DAY is an administrative classification and survives check-in.
		if existing.Status == attendance.StatusHalfDay {
			status = attendance.StatusHalfDay
		}
		updated, err := s.AttendanceRepository.SetCheckIn(ctx, existing.ID, now, status)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		s.logCheckIn(ctx, updated)
		return attendance.NewAttendanceResponse(updated), nil
	case !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.AttendanceResponse{}, fmt.Errorf("get today's attendance: %w", err)
	}

	created, err := s.AttendanceRepository.Create(ctx, attendance.Attendance{
		EmployeeID: employeeID,
		Date:       today,
		CheckIn:    &now,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if errors.Is(err, attendance.ErrAttendanceExists) {
		// Another process won the insert.
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("create attendance: %w", err)
	}

	s.logCheckIn(ctx, created)
	return attendance.NewAttendanceResponse(created), nil
}

func (s *AttendanceServiceImpl) logCheckIn(ctx context.Context, a attendance.Attendance) {
	slog.InfoContext(ctx, "employee checked in",
		"attendance_id", a.ID,
		"employee_id", a.EmployeeID,
		"status", a.Status,
	)
}

func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, actor auth.Identity, employeeID string) (attendance.AttendanceResponse, error) {
	if !actor.ActsFor(employeeID, user.PermissionAttendanceManage) {
		return attendance.AttendanceResponse{}, auth.ErrForbidden
	}

	now := s.clock.Now()
	today := s.policy.WorkDate(now)

	unlock := s.locks.Lock(dayKey(employeeID, today))
	defer unlock()

	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	if errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("get today's attendance: %w", err)
	}
	if existing.CheckIn == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if existing.CheckOut != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	minutes, err := attendance.WorkingMinutes(*existing.CheckIn, now)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated, err := s.AttendanceRepository.SetCheckOut(ctx, existing.ID, now, minutes)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.InfoContext(ctx, "employee checked out",
		"attendance_id", updated.ID,
		"employee_id", updated.EmployeeID,
		"working_minutes", minutes,
	)
	return attendance.NewAttendanceResponse(updated), nil
}
