package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type EmployeeFilter struct {
	DepartmentID *string `json:"department_id,omitempty"`
	Search       *string `json:"search,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.CheckPage(&errs, &f.Page, &f.Limit)

	if f.Search != nil {
		trimmed := strings.TrimSpace(*f.Search)
		if len(trimmed) > 100 {
			errs.Add("search", "search must not exceed 100 characters")
		}
		f.Search = &trimmed
	}

	return errs.Err()
}

type EmployeeResponse struct {
	ID             string          `json:"id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	Phone          *string         `json:"phone,omitempty"`
	DepartmentID   string          `json:"department_id"`
	DepartmentName string          `json:"department_name"`
	PositionID     string          `json:"position_id"`
	PositionTitle  string          `json:"position_title"`
	BaseSalary     decimal.Decimal `json:"base_salary"`
	HireDate       string          `json:"hire_date"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		FullName:       e.FullName(),
		Email:          e.Email,
		Phone:          e.Phone,
		DepartmentID:   e.Department.ID,
		DepartmentName: e.Department.Name,
		PositionID:     e.Position.ID,
		PositionTitle:  e.Position.Title,
		BaseSalary:     e.BaseSalary,
		HireDate:       e.HireDate.Format(time.DateOnly),
	}
}
