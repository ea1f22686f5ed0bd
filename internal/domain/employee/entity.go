package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Department struct {
	ID   string
	Name string
}

// Position is the job role an employee holds inside a department.
type Position struct {
	ID    string
	Title string
}

type Employee struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Phone      *string
	Department Department
	Position   Position
	BaseSalary decimal.Decimal
	HireDate   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
