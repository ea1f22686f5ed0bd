package payroll

import (
	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type Breakdown struct {
	Gross           decimal.Decimal
	TotalDeductions decimal.Decimal
	Net             decimal.Decimal
}

// ComputeNet derives gross, deductions and net pay. It has no side effects;
// net pay never drops below zero and negative inputs are rejected.
func ComputeNet(c Components) (Breakdown, error) {
	var errs validator.ValidationErrors
	for _, f := range c.fields() {
		if f.value.IsNegative() {
			errs.Add(f.name, f.name+" must not be negative")
		}
	}
	if err := errs.Err(); err != nil {
		return Breakdown{}, err
	}

	gross := decimal.Sum(c.BasicSalary, c.HRA, c.Conveyance, c.Medical, c.LTA)
	deductions := decimal.Sum(c.PF, c.Gratuity, c.Tax, c.OtherDeductions)
	net := gross.Sub(deductions)
	if net.IsNegative() {
		net = decimal.Zero
	}

	return Breakdown{Gross: gross, TotalDeductions: deductions, Net: net}, nil
}

type namedAmount struct {
	name  string
	value decimal.Decimal
}

func (c Components) fields() []namedAmount {
	return []namedAmount{
		{"basic_salary", c.BasicSalary},
		{"hra", c.HRA},
		{"conveyance", c.Conveyance},
		{"medical", c.Medical},
		{"lta", c.LTA},
		{"pf", c.PF},
		{"gratuity", c.Gratuity},
		{"tax", c.Tax},
		{"other_deductions", c.OtherDeductions},
	}
}
