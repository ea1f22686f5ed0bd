package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Create inserts a record; ErrAttendanceExists when (employee, date) is taken.
	Create(ctx context.Context, data Attendance) (Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
	Update(ctx context.Context, data Attendance) (Attendance, error)
	Delete(ctx context.Context, id string) error

	// SetCheckIn stamps a record that has no check-in yet, else ErrAlreadyCheckedIn.
	SetCheckIn(ctx context.Context, id string, at time.Time, status Status) (Attendance, error)

	// SetCheckOut stamps a checked-in record that has no check-out yet, else
	// ErrAlreadyCheckedOut.
	SetCheckOut(ctx context.Context, id string, at time.Time, workingMinutes int) (Attendance, error)
}
