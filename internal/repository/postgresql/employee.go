package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.first_name, e.last_name, e.email, e.phone,
	COALESCE(d.id::text, ''), COALESCE(d.name, ''),
	COALESCE(p.id::text, ''), COALESCE(p.title, ''),
	e.base_salary, COALESCE(e.hire_date, '0001-01-01'::date), e.created_at, e.updated_at`

const employeeFrom = `
	FROM employees e
	LEFT JOIN departments d ON d.id = e.department_id
	LEFT JOIN positions p ON p.id = e.position_id`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone,
		&e.Department.ID, &e.Department.Name,
		&e.Position.ID, &e.Position.Title,
		&e.BaseSalary, &e.HireDate, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + employeeFrom + ` WHERE e.id = $1`
	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if err != nil {
		return employee.Employee{}, err
	}
	return e, nil
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := " WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if filter.DepartmentID != nil && *filter.DepartmentID != "" {
		baseWhere += fmt.Sprintf(" AND e.department_id::text = $%d", argIdx)
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		baseWhere += fmt.Sprintf(" AND (e.first_name || ' ' || e.last_name ILIKE $%d OR e.email ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*)`+employeeFrom+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	limit, pageArgs := pageClause(filter.Page, filter.Limit, argIdx)
	query := `SELECT ` + employeeColumns + employeeFrom + baseWhere + ` ORDER BY e.first_name, e.id` + limit

	rows, err := q.Query(ctx, query, append(args, pageArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

// Create inserts the employee, creating its department and position by name
// when they are not known yet.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}

	var departmentID, positionID *string
	if e.Department.Name != "" {
		id, err := upsertNamed(ctx, q, "departments", "name", e.Department.Name)
		if err != nil {
			return employee.Employee{}, err
		}
		e.Department.ID, departmentID = id, &id
	}
	if e.Position.Title != "" {
		id, err := upsertNamed(ctx, q, "positions", "title", e.Position.Title)
		if err != nil {
			return employee.Employee{}, err
		}
		e.Position.ID, positionID = id, &id
	}

	var hireDate interface{}
	if !e.HireDate.IsZero() {
		hireDate = e.HireDate
	}

	query := `
		INSERT INTO employees (
			id, first_name, last_name, email, phone,
			department_id, position_id, base_salary, hire_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		e.ID, e.FirstName, e.LastName, e.Email, e.Phone,
		departmentID, positionID, e.BaseSalary, hireDate,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if isUniqueViolation(err) {
		return employee.Employee{}, employee.ErrEmailExists
	}
	if err != nil {
		return employee.Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return e, nil
}

func upsertNamed(ctx context.Context, q database.Querier, table, column, value string) (string, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (id, %[2]s) VALUES ($1, $2)
		ON CONFLICT (%[2]s) DO UPDATE SET %[2]s = EXCLUDED.%[2]s
		RETURNING id::text
	`, table, column)

	var id string
	if err := q.QueryRow(ctx, query, uuid.Must(uuid.NewV7()).String(), value).Scan(&id); err != nil {
		return "", fmt.Errorf("upsert %s: %w", table, err)
	}
	return id, nil
}
