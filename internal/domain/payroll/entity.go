package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryStatus enum
type SalaryStatus string

const (
	SalaryStatusPending SalaryStatus = "PENDING"
	SalaryStatusPaid    SalaryStatus = "PAID"
)

func (s SalaryStatus) IsValid() bool {
	return s == SalaryStatusPending || s == SalaryStatusPaid
}

// Components are the caller-supplied earnings and deductions of a salary.
type Components struct {
	BasicSalary decimal.Decimal
	HRA         decimal.Decimal
	Conveyance  decimal.Decimal
	Medical     decimal.Decimal
	LTA         decimal.Decimal

	PF              decimal.Decimal
	Gratuity        decimal.Decimal
	Tax             decimal.Decimal
	OtherDeductions decimal.Decimal
}

// SalaryRecord - one employee's pay for one month
type SalaryRecord struct {
	ID         string
	EmployeeID string
	Month      int
	Year       int
	Components
	Gross           decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	Status          SalaryStatus
	PayDate         *time.Time
	PaidBy          *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Apply stores a computed breakdown on the record.
func (r *SalaryRecord) Apply(b Breakdown) {
	r.Gross = b.Gross
	r.TotalDeductions = b.TotalDeductions
	r.NetSalary = b.Net
}

func (r SalaryRecord) Period() time.Time {
	return time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC)
}
