package leave

import (
	"time"
)

type LeaveType string

const (
	LeaveTypeCasual    LeaveType = "CASUAL"
	LeaveTypeSick      LeaveType = "SICK"
	LeaveTypeEarned    LeaveType = "EARNED"
	LeaveTypeMaternity LeaveType = "MATERNITY"
	LeaveTypePaternity LeaveType = "PATERNITY"
)

// LeaveTypes lists every recognised type in display order.
var LeaveTypes = []LeaveType{
	LeaveTypeCasual,
	LeaveTypeSick,
	LeaveTypeEarned,
	LeaveTypeMaternity,
	LeaveTypePaternity,
}

func (t LeaveType) IsValid() bool {
	for _, lt := range LeaveTypes {
		if t == lt {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// LeaveRequest entity. StartDate and EndDate are calendar dates stored at UTC
// midnight; the range is inclusive.
type LeaveRequest struct {
	ID           string
	EmployeeID   string
	LeaveType    LeaveType
	StartDate    time.Time
	EndDate      time.Time
	DaysCount    int
	Reason       string
	Status       Status
	ApproverID   *string
	Comments     *string
	AppliedDate  time.Time
	ApprovedDate *time.Time
	UpdatedAt    time.Time
}

// Year is the balance year the request draws from.
func (r LeaveRequest) Year() int {
	return r.StartDate.Year()
}

// Balance is the derived allotment usage for one (employee, type, year).
type Balance struct {
	EmployeeID string
	LeaveType  LeaveType
	Year       int
	Allotment  int
	Used       int
	Pending    int
}

func (b Balance) Remaining() int {
	return b.Allotment - b.Used - b.Pending
}

// Allotments maps each leave type to its annual allowance in days.
type Allotments map[LeaveType]int

func (a Allotments) For(t LeaveType) int {
	return a[t]
}

// LeaveQuota overrides the configured allotment for one employee, leave type
// and year.
type LeaveQuota struct {
	EmployeeID string
	LeaveType  LeaveType
	Year       int
	Days       int
	UpdatedAt  time.Time
}

// NewAllotments builds Allotments from plain type codes, ignoring unknown codes.
func NewAllotments(days map[string]int) Allotments {
	out := make(Allotments, len(days))
	for code, n := range days {
		if t := LeaveType(code); t.IsValid() {
			out[t] = n
		}
	}
	return out
}
