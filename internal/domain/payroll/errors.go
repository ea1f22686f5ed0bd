package payroll

import "errors"

var (
	ErrSalaryRecordNotFound = errors.New("salary record not found")
	ErrSalaryRecordExists   = errors.New("salary record already exists for this period")
	ErrInvalidTransition    = errors.New("salary record already paid, cannot modify")
)
