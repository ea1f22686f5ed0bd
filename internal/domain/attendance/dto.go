package attendance

import (
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
)

type CreateAttendanceRequest struct {
	EmployeeID   string  `json:"employee_id"`
	Date         string  `json:"date"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
	Status       *string `json:"status,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	// Derived; rejected when sent
	WorkingHours   any `json:"working_hours,omitempty"`
	WorkingMinutes any `json:"working_minutes,omitempty"`

	// Parsed by Validate
	ParsedDate     time.Time  `json:"-"`
	ParsedCheckIn  *time.Time `json:"-"`
	ParsedCheckOut *time.Time `json:"-"`
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if d, ok := validator.IsValidDate(r.Date); ok {
		r.ParsedDate = d
	} else {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	r.ParsedCheckIn = parseTimestamp(&errs, "check_in_time", r.CheckInTime)
	r.ParsedCheckOut = parseTimestamp(&errs, "check_out_time", r.CheckOutTime)
	validateStatus(&errs, r.Status)
	validateNotes(&errs, r.Notes)
	rejectDerived(&errs, r.WorkingHours, r.WorkingMinutes)

	return errs.Err()
}

// UpdateAttendanceRequest replaces only the fields that are present.
type UpdateAttendanceRequest struct {
	ID           string  `json:"-"`
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
	Status       *string `json:"status,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	WorkingHours   any `json:"working_hours,omitempty"`
	WorkingMinutes any `json:"working_minutes,omitempty"`

	ParsedCheckIn  *time.Time `json:"-"`
	ParsedCheckOut *time.Time `json:"-"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	r.ParsedCheckIn = parseTimestamp(&errs, "check_in_time", r.CheckInTime)
	r.ParsedCheckOut = parseTimestamp(&errs, "check_out_time", r.CheckOutTime)
	validateStatus(&errs, r.Status)
	validateNotes(&errs, r.Notes)
	rejectDerived(&errs, r.WorkingHours, r.WorkingMinutes)

	return errs.Err()
}

func parseTimestamp(errs *validator.ValidationErrors, field string, v *string) *time.Time {
	if v == nil || *v == "" {
		return nil
	}
	t, ok := validator.IsValidDateTime(*v)
	if !ok {
		errs.Add(field, field+" must be an RFC3339 timestamp")
		return nil
	}
	return &t
}

func validateStatus(errs *validator.ValidationErrors, s *string) {
	if s != nil && !Status(*s).IsValid() {
		errs.Add("status", "status must be one of: PRESENT, ABSENT, LATE, HALF_DAY")
	}
}

func validateNotes(errs *validator.ValidationErrors, notes *string) {
	if notes != nil && len(*notes) > 500 {
		errs.Add("notes", "notes must not exceed 500 characters")
	}
}

func rejectDerived(errs *validator.ValidationErrors, hours, minutes any) {
	if hours != nil {
		errs.Add("working_hours", "working_hours is computed by the server")
	}
	if minutes != nil {
		errs.Add("working_minutes", "working_minutes is computed by the server")
	}
}

// CheckRecord enforces the cross-field rules every stored record must meet.
func CheckRecord(a Attendance) error {
	var errs validator.ValidationErrors

	if a.CheckOut != nil && a.CheckIn == nil {
		errs.Add("check_out_time", "check_out_time requires check_in_time")
	}
	if a.CheckIn != nil && a.CheckOut != nil && a.CheckOut.Before(*a.CheckIn) {
		errs.Add("check_out_time", ErrCheckOutBeforeCheckIn.Error())
	}
	if a.Status == StatusAbsent && a.CheckIn != nil {
		errs.Add("status", "ABSENT records must not carry check-in or check-out times")
	}

	return errs.Err()
}

// MaxShift bounds how long after check-in a check-out may be recorded.
const MaxShift = 24 * time.Hour

// CheckShift ties a record's times to its date: check-in must fall on the
// record's local work day and check-out within MaxShift of it.
func (p Policy) CheckShift(a Attendance) error {
	var errs validator.ValidationErrors

	if a.CheckIn != nil && !p.WorkDate(*a.CheckIn).Equal(a.Date) {
		errs.Add("check_in_time", "check_in_time must fall on the record date")
	}
	if a.CheckIn != nil && a.CheckOut != nil && a.CheckOut.Sub(*a.CheckIn) > MaxShift {
		errs.Add("check_out_time", "check_out_time must be within 24 hours of check_in_time")
	}

	return errs.Err()
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Parsed by Validate
	From *time.Time `json:"-"`
	To   *time.Time `json:"-"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.CheckPage(&errs, &f.Page, &f.Limit)
	validateStatus(&errs, f.Status)

	if f.Date != nil && *f.Date != "" {
		d, ok := validator.IsValidDate(*f.Date)
		if !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		} else {
			f.From, f.To = &d, &d
		}
	}
	if f.StartDate != nil && *f.StartDate != "" {
		d, ok := validator.IsValidDate(*f.StartDate)
		if !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		} else {
			f.From = &d
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		d, ok := validator.IsValidDate(*f.EndDate)
		if !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		} else {
			f.To = &d
		}
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employee_id"`
	Date           string     `json:"date"`
	CheckInTime    *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	WorkingMinutes *int       `json:"working_minutes,omitempty"`
	WorkingHours   *string    `json:"working_hours,omitempty"`
	Status         Status     `json:"status"`
	Notes          *string    `json:"notes,omitempty"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		Date:           a.Date.Format(time.DateOnly),
		CheckInTime:    a.CheckIn,
		CheckOutTime:   a.CheckOut,
		WorkingMinutes: a.WorkingMinutes,
		Status:         a.Status,
		Notes:          a.Notes,
	}
	if a.WorkingMinutes != nil {
		h := FormatMinutes(*a.WorkingMinutes)
		resp.WorkingHours = &h
	}
	return resp
}
