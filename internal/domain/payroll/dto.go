package payroll

import (
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ComponentsInput struct {
	BasicSalary     *decimal.Decimal `json:"basic_salary,omitempty"`
	HRA             *decimal.Decimal `json:"hra,omitempty"`
	Conveyance      *decimal.Decimal `json:"conveyance,omitempty"`
	Medical         *decimal.Decimal `json:"medical,omitempty"`
	LTA             *decimal.Decimal `json:"lta,omitempty"`
	PF              *decimal.Decimal `json:"pf,omitempty"`
	Gratuity        *decimal.Decimal `json:"gratuity,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	OtherDeductions *decimal.Decimal `json:"other_deductions,omitempty"`

	// Derived or workflow-owned; rejected when sent
	Gross           any `json:"gross_salary,omitempty"`
	TotalDeductions any `json:"total_deductions,omitempty"`
	NetSalary       any `json:"net_salary,omitempty"`
	Status          any `json:"status,omitempty"`
	PayDate         any `json:"pay_date,omitempty"`
}

// MergeInto overwrites the components that are present.
func (in ComponentsInput) MergeInto(c *Components) {
	set := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.BasicSalary, in.BasicSalary)
	set(&c.HRA, in.HRA)
	set(&c.Conveyance, in.Conveyance)
	set(&c.Medical, in.Medical)
	set(&c.LTA, in.LTA)
	set(&c.PF, in.PF)
	set(&c.Gratuity, in.Gratuity)
	set(&c.Tax, in.Tax)
	set(&c.OtherDeductions, in.OtherDeductions)
}

// amountScale is the number of decimal places stored for a salary amount.
const amountScale = 2

func (in ComponentsInput) check(errs *validator.ValidationErrors) {
	amounts := []struct {
		field string
		value *decimal.Decimal
	}{
		{"basic_salary", in.BasicSalary},
		{"hra", in.HRA},
		{"conveyance", in.Conveyance},
		{"medical", in.Medical},
		{"lta", in.LTA},
		{"pf", in.PF},
		{"gratuity", in.Gratuity},
		{"tax", in.Tax},
		{"other_deductions", in.OtherDeductions},
	}
	for _, a := range amounts {
		if a.value != nil && !a.value.Equal(a.value.Round(amountScale)) {
			errs.Add(a.field, a.field+" must have at most 2 decimal places")
		}
	}

	if in.Gross != nil {
		errs.Add("gross_salary", "gross_salary is computed by the server")
	}
	if in.TotalDeductions != nil {
		errs.Add("total_deductions", "total_deductions is computed by the server")
	}
	if in.NetSalary != nil {
		errs.Add("net_salary", "net_salary is computed by the server")
	}
	if in.Status != nil {
		errs.Add("status", "status changes only through mark paid")
	}
	if in.PayDate != nil {
		errs.Add("pay_date", "pay_date is set when the record is paid")
	}
}

type CreateSalaryRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      Month  `json:"month"`
	Year       int    `json:"year"`
	ComponentsInput
}

func (r *CreateSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	validatePeriod(&errs, r.Month, r.Year)
	if r.BasicSalary == nil {
		errs.Add("basic_salary", "basic_salary is required")
	}
	r.ComponentsInput.check(&errs)

	return errs.Err()
}

// Components returns the submitted amounts with omitted ones as zero.
func (r *CreateSalaryRequest) Components() Components {
	var c Components
	r.ComponentsInput.MergeInto(&c)
	return c
}

type UpdateSalaryRequest struct {
	ID string `json:"-"`
	ComponentsInput
}

func (r *UpdateSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	r.ComponentsInput.check(&errs)

	return errs.Err()
}

func validatePeriod(errs *validator.ValidationErrors, m Month, year int) {
	if !m.Valid() {
		errs.Add("month", "month must be 1-12 or a month name")
	}
	if year < 1900 || year > 9999 {
		errs.Add("year", "year must be a four digit year")
	}
}

type SalaryFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *SalaryFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.CheckPage(&errs, &f.Page, &f.Limit)
	if f.Month != nil && !Month(*f.Month).Valid() {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.Year != nil && *f.Year <= 0 {
		errs.Add("year", "year must be a positive integer")
	}
	if f.Status != nil && !SalaryStatus(*f.Status).IsValid() {
		errs.Add("status", "status must be one of: PENDING, PAID")
	}

	return errs.Err()
}

type SalaryRecordResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	Month           int             `json:"month"`
	MonthName       string          `json:"month_name"`
	Year            int             `json:"year"`
	BasicSalary     decimal.Decimal `json:"basic_salary"`
	HRA             decimal.Decimal `json:"hra"`
	Conveyance      decimal.Decimal `json:"conveyance"`
	Medical         decimal.Decimal `json:"medical"`
	LTA             decimal.Decimal `json:"lta"`
	PF              decimal.Decimal `json:"pf"`
	Gratuity        decimal.Decimal `json:"gratuity"`
	Tax             decimal.Decimal `json:"tax"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	Status          SalaryStatus    `json:"status"`
	PayDate         *time.Time      `json:"pay_date,omitempty"`
	PaidBy          *string         `json:"paid_by,omitempty"`
}

func NewSalaryRecordResponse(r SalaryRecord) SalaryRecordResponse {
	return SalaryRecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		Month:           r.Month,
		MonthName:       time.Month(r.Month).String(),
		Year:            r.Year,
		BasicSalary:     r.BasicSalary,
		HRA:             r.HRA,
		Conveyance:      r.Conveyance,
		Medical:         r.Medical,
		LTA:             r.LTA,
		PF:              r.PF,
		Gratuity:        r.Gratuity,
		Tax:             r.Tax,
		OtherDeductions: r.OtherDeductions,
		GrossSalary:     r.Gross,
		TotalDeductions: r.TotalDeductions,
		NetSalary:       r.NetSalary,
		Status:          r.Status,
		PayDate:         r.PayDate,
		PaidBy:          r.PaidBy,
	}
}
