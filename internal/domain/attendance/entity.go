package attendance

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLate    Status = "LATE"
	StatusHalfDay Status = "HALF_DAY"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay:
		return true
	}
	return false
}

// Attendance is one employee's record for one calendar day.
type Attendance struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	CheckIn        *time.Time
	CheckOut       *time.Time
	WorkingMinutes *int
	Status         Status
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Policy classifies check-ins relative to a local late threshold.
type Policy struct {
	LateAfter time.Duration
	Location  *time.Location
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// WorkDate returns the local calendar day of t, stored at UTC midnight.
func (p Policy) WorkDate(t time.Time) time.Time {
	y, m, d := t.In(p.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Classify returns LATE when checkIn is strictly after the threshold on its
// local day, PRESENT otherwise.
func (p Policy) Classify(checkIn time.Time) Status {
	local := checkIn.In(p.location())
	y, m, d := local.Date()
	threshold := time.Date(y, m, d, 0, 0, 0, 0, p.location()).Add(p.LateAfter)
	if local.After(threshold) {
		return StatusLate
	}
	return StatusPresent
}

// WorkingMinutes is the whole minutes between in and out.
func WorkingMinutes(in, out time.Time) (int, error) {
	if out.Before(in) {
		return 0, ErrCheckOutBeforeCheckIn
	}
	return int(out.Sub(in) / time.Minute), nil
}

// FormatMinutes renders minutes as "8h55m".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
