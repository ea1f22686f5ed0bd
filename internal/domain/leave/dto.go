package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
)

// derivedFields are server-computed or workflow-owned and may not be sent.
type derivedFields struct {
	DaysCount    any `json:"days_count,omitempty"`
	Status       any `json:"status,omitempty"`
	ApproverID   any `json:"approver_id,omitempty"`
	AppliedDate  any `json:"applied_date,omitempty"`
	ApprovedDate any `json:"approved_date,omitempty"`
}

func (d derivedFields) check(errs *validator.ValidationErrors) {
	if d.DaysCount != nil {
		errs.Add("days_count", "days_count is computed by the server")
	}
	if d.Status != nil {
		errs.Add("status", "status cannot be set directly")
	}
	if d.ApproverID != nil {
		errs.Add("approver_id", "approver_id is taken from the approving user")
	}
	if d.AppliedDate != nil {
		errs.Add("applied_date", "applied_date is set by the server")
	}
	if d.ApprovedDate != nil {
		errs.Add("approved_date", "approved_date is set by the server")
	}
}

type SubmitLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
	derivedFields

	// Parsed by Validate
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	r.Start, r.End = validateRange(&errs, r.StartDate, r.EndDate)
	validateType(&errs, r.LeaveType)
	validateReason(&errs, r.Reason)
	r.derivedFields.check(&errs)

	return errs.Err()
}

type UpdateLeaveRequest struct {
	ID        string `json:"-"`
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
	derivedFields

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *UpdateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	r.Start, r.End = validateRange(&errs, r.StartDate, r.EndDate)
	validateType(&errs, r.LeaveType)
	validateReason(&errs, r.Reason)
	r.derivedFields.check(&errs)

	return errs.Err()
}

type RejectLeaveRequest struct {
	ID       string
	Comments string
}

func (r *RejectLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if len(r.Comments) > 1000 {
		errs.Add("comments", "comments must not exceed 1000 characters")
	}

	return errs.Err()
}

func validateRange(errs *validator.ValidationErrors, startStr, endStr string) (time.Time, time.Time) {
	start, okStart := validator.IsValidDate(startStr)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(endStr)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	return start, end
}

func validateType(errs *validator.ValidationErrors, t string) {
	if !LeaveType(t).IsValid() {
		errs.Add("leave_type", "leave_type must be one of: CASUAL, SICK, EARNED, MATERNITY, PATERNITY")
	}
}

func validateReason(errs *validator.ValidationErrors, reason string) {
	if validator.IsEmpty(reason) {
		errs.Add("reason", "reason is required")
	}
	if len(reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}
}

type LeaveRequestFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	LeaveType  *string `json:"leave_type,omitempty"`
	Year       *int    `json:"year,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.CheckPage(&errs, &f.Page, &f.Limit)

	if f.Status != nil {
		s := strings.ToUpper(*f.Status)
		if !Status(s).IsValid() {
			errs.Add("status", "status must be one of: PENDING, APPROVED, REJECTED")
		}
		f.Status = &s
	}
	if f.LeaveType != nil {
		t := strings.ToUpper(*f.LeaveType)
		validateType(&errs, t)
		f.LeaveType = &t
	}
	if f.Year != nil && *f.Year <= 0 {
		errs.Add("year", "year must be a positive integer")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	LeaveType    LeaveType  `json:"leave_type"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	DaysCount    int        `json:"days_count"`
	Reason       string     `json:"reason"`
	Status       Status     `json:"status"`
	ApproverID   *string    `json:"approver_id,omitempty"`
	Comments     *string    `json:"comments,omitempty"`
	AppliedDate  time.Time  `json:"applied_date"`
	ApprovedDate *time.Time `json:"approved_date,omitempty"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		LeaveType:    r.LeaveType,
		StartDate:    r.StartDate.Format(time.DateOnly),
		EndDate:      r.EndDate.Format(time.DateOnly),
		DaysCount:    r.DaysCount,
		Reason:       r.Reason,
		Status:       r.Status,
		ApproverID:   r.ApproverID,
		Comments:     r.Comments,
		AppliedDate:  r.AppliedDate,
		ApprovedDate: r.ApprovedDate,
	}
}

type BalanceItem struct {
	LeaveType LeaveType `json:"leave_type"`
	Total     int       `json:"total"`
	Used      int       `json:"used"`
	Pending   int       `json:"pending"`
	Remaining int       `json:"remaining"`
}

type BalanceResponse struct {
	EmployeeID string        `json:"employee_id"`
	Year       int           `json:"year"`
	Balances   []BalanceItem `json:"balances"`
}

type MonthUsage struct {
	Month int               `json:"month"`
	Days  map[LeaveType]int `json:"days"`
	Total int               `json:"total"`
}

// MonthlyUsageResponse reports APPROVED days by the month they fall in.
// It is informational; balances are charged to the start year.
type MonthlyUsageResponse struct {
	EmployeeID string       `json:"employee_id"`
	Year       int          `json:"year"`
	Months     []MonthUsage `json:"months"`
}

type SetLeaveQuotaRequest struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	Year       int    `json:"year"`
	Days       *int   `json:"days"`
}

func (r *SetLeaveQuotaRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	r.LeaveType = strings.ToUpper(r.LeaveType)
	validateType(&errs, r.LeaveType)
	if r.Year < 1900 || r.Year > 9999 {
		errs.Add("year", "year must be between 1900 and 9999")
	}
	if r.Days == nil {
		errs.Add("days", "days is required")
	} else if *r.Days < 0 || *r.Days > 366 {
		errs.Add("days", "days must be between 0 and 366")
	}

	return errs.Err()
}

type LeaveQuotaResponse struct {
	EmployeeID string    `json:"employee_id"`
	LeaveType  LeaveType `json:"leave_type"`
	Year       int       `json:"year"`
	Days       int       `json:"days"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewLeaveQuotaResponse(q LeaveQuota) LeaveQuotaResponse {
	return LeaveQuotaResponse{
		EmployeeID: q.EmployeeID,
		LeaveType:  q.LeaveType,
		Year:       q.Year,
		Days:       q.Days,
		UpdatedAt:  q.UpdatedAt,
	}
}
