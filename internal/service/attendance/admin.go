package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/auth"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
)

// Create records a day outside the check-in/check-out pairing. HALF_DAY can
// only be set here or in Update.
func (s *AttendanceServiceImpl) Create(ctx context.Context, actor auth.Identity, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.Can(user.PermissionAttendanceManage) {
		return attendance.AttendanceResponse{}, auth.ErrForbidden
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("get employee %s: %w", req.EmployeeID, err)
	}

	now := s.clock.Now()
	record := attendance.Attendance{
		EmployeeID: req.EmployeeID,
		Date:       req.ParsedDate,
		CheckIn:    req.ParsedCheckIn,
		CheckOut:   req.ParsedCheckOut,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Status != nil {
		record.Status = attendance.Status(*req.Status)
	} else {
		record.Status = s.deriveStatus(record)
	}
	if err := s.finalize(&record); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	unlock := s.locks.Lock(dayKey(record.EmployeeID, record.Date))
	defer unlock()

	created, err := s.AttendanceRepository.Create(ctx, record)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("create attendance: %w", err)
	}

	slog.InfoContext(ctx, "attendance recorded",
		"attendance_id", created.ID,
		"employee_id", created.EmployeeID,
		"status", created.Status,
		"actor", actor.UserID,
	)
	return attendance.NewAttendanceResponse(created), nil
}

func (s *AttendanceServiceImpl) Update(ctx context.Context, actor auth.Identity, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.Can(user.PermissionAttendanceManage) {
		return attendance.AttendanceResponse{}, auth.ErrForbidden
	}

	current, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("get attendance %s: %w", req.ID, err)
	}

	unlock := s.locks.Lock(dayKey(current.EmployeeID, current.Date))
	defer unlock()

	// Re-read under the day lock so a concurrent check-out is not overwritten.
	current, err = s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("get attendance %s: %w", req.ID, err)
	}

	next := current
	if req.ParsedCheckIn != nil {
		next.CheckIn = req.ParsedCheckIn
	}
	if req.ParsedCheckOut != nil {
		next.CheckOut = req.ParsedCheckOut
	}
	if req.Notes != nil {
		next.Notes = req.Notes
	}
	switch {
	case req.Status != nil:
		next.Status = attendance.Status(*req.Status)
	case req.ParsedCheckIn != nil && current.Status != attendance.StatusHalfDay:
		next.Status = s.deriveStatus(next)
	}
	next.UpdatedAt = s.clock.Now()

	if err := s.finalize(&next); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated, err := s.AttendanceRepository.Update(ctx, next)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("update attendance: %w", err)
	}
	return attendance.NewAttendanceResponse(updated), nil
}

func (s *AttendanceServiceImpl) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if !actor.Can(user.PermissionAttendanceManage) {
		return auth.ErrForbidden
	}
	if err := s.AttendanceRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete attendance %s: %w", id, err)
	}
	slog.InfoContext(ctx, "attendance deleted", "attendance_id", id, "actor", actor.UserID)
	return nil
}

func (s *AttendanceServiceImpl) Get(ctx context.Context, actor auth.Identity, id string) (attendance.AttendanceResponse, error) {
	record, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("get attendance %s: %w", id, err)
	}
	if !actor.ActsFor(record.EmployeeID, user.PermissionAttendanceViewAll) {
		return attendance.AttendanceResponse{}, auth.ErrForbidden
	}
	return attendance.NewAttendanceResponse(record), nil
}

func (s *AttendanceServiceImpl) List(ctx context.Context, actor auth.Identity, filter attendance.AttendanceFilter) ([]attendance.AttendanceResponse, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	if !actor.Can(user.PermissionAttendanceViewAll) {
		if filter.EmployeeID != nil && *filter.EmployeeID != actor.EmployeeID {
			return nil, 0, auth.ErrForbidden
		}
		own := actor.EmployeeID
		filter.EmployeeID = &own
	}

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	out := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, attendance.NewAttendanceResponse(r))
	}
	return out, total, nil
}

// deriveStatus picks a status when the caller gave none: ABSENT without a
// check-in, otherwise the late policy decides.
func (s *AttendanceServiceImpl) deriveStatus(a attendance.Attendance) attendance.Status {
	if a.CheckIn == nil {
		return attendance.StatusAbsent
	}
	return s.policy.Classify(*a.CheckIn)
}

// finalize validates cross-field rules and recomputes working minutes.
func (s *AttendanceServiceImpl) finalize(a *attendance.Attendance) error {
	if err := attendance.CheckRecord(*a); err != nil {
		return err
	}
	if err := s.policy.CheckShift(*a); err != nil {
		return err
	}
	a.WorkingMinutes = nil
	if a.CheckIn != nil && a.CheckOut != nil {
		minutes, err := attendance.WorkingMinutes(*a.CheckIn, *a.CheckOut)
		if err != nil {
			return err
		}
		a.WorkingMinutes = &minutes
	}
	return nil
}
