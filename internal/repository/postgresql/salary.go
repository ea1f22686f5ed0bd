package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type salaryRepositoryImpl struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) payroll.SalaryRepository {
	return &salaryRepositoryImpl{db: db}
}

const salaryColumns = `
	id, employee_id::text, month, year,
	basic_salary, hra, conveyance, medical, lta,
	pf, gratuity, tax, other_deductions,
	gross_salary, total_deductions, net_salary,
	status, pay_date, paid_by::text, created_at, updated_at`

func scanSalary(row pgx.Row) (payroll.SalaryRecord, error) {
	var s payroll.SalaryRecord
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.Month, &s.Year,
		&s.BasicSalary, &s.HRA, &s.Conveyance, &s.Medical, &s.LTA,
		&s.PF, &s.Gratuity, &s.Tax, &s.OtherDeductions,
		&s.Gross, &s.TotalDeductions, &s.NetSalary,
		&s.Status, &s.PayDate, &s.PaidBy, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *salaryRepositoryImpl) Create(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_records (
			id, employee_id, month, year,
			basic_salary, hra, conveyance, medical, lta,
			pf, gratuity, tax, other_deductions,
			gross_salary, total_deductions, net_salary,
			status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19
		) RETURNING ` + salaryColumns

	c := record.Components
	created, err := scanSalary(q.QueryRow(ctx, query,
		uuid.Must(uuid.NewV7()).String(), record.EmployeeID, record.Month, record.Year,
		c.BasicSalary, c.HRA, c.Conveyance, c.Medical, c.LTA,
		c.PF, c.Gratuity, c.Tax, c.OtherDeductions,
		record.Gross, record.TotalDeductions, record.NetSalary,
		record.Status, record.CreatedAt, record.UpdatedAt,
	))
	if isUniqueViolation(err) {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordExists
	}
	if err != nil {
		return payroll.SalaryRecord{}, fmt.Errorf("insert salary record: %w", err)
	}
	return created, nil
}

func (r *salaryRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.SalaryRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	q := GetQuerier(ctx, r.db)

	s, err := scanSalary(q.QueryRow(ctx, `SELECT `+salaryColumns+` FROM salary_records WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return s, err
}

func (r *salaryRepositoryImpl) List(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.SalaryRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := " WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		baseWhere += fmt.Sprintf(" AND employee_id::text = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Month != nil {
		baseWhere += fmt.Sprintf(" AND month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		baseWhere += fmt.Sprintf(" AND year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM salary_records`+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count salary records: %w", err)
	}

	limit, pageArgs := pageClause(filter.Page, filter.Limit, argIdx)
	query := `SELECT ` + salaryColumns + ` FROM salary_records` + baseWhere +
		` ORDER BY year DESC, month DESC, employee_id` + limit

	rows, err := q.Query(ctx, query, append(args, pageArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, s)
	}
	return records, total, rows.Err()
}

func (r *salaryRepositoryImpl) UpdatePending(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_records
		SET basic_salary = $2, hra = $3, conveyance = $4, medical = $5, lta = $6,
			pf = $7, gratuity = $8, tax = $9, other_deductions = $10,
			gross_salary = $11, total_deductions = $12, net_salary = $13,
			updated_at = $14
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + salaryColumns

	c := record.Components
	updated, err := scanSalary(q.QueryRow(ctx, query,
		record.ID,
		c.BasicSalary, c.HRA, c.Conveyance, c.Medical, c.LTA,
		c.PF, c.Gratuity, c.Tax, c.OtherDeductions,
		record.Gross, record.TotalDeductions, record.NetSalary,
		record.UpdatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.SalaryRecord{}, r.notPending(ctx, q, record.ID)
	}
	return updated, err
}

func (r *salaryRepositoryImpl) MarkPaid(ctx context.Context, id string, paidBy string, at time.Time) (payroll.SalaryRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_records
		SET status = 'PAID', pay_date = $2, paid_by = $3, updated_at = $2
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + salaryColumns

	paid, err := scanSalary(q.QueryRow(ctx, query, id, at, paidBy))
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.SalaryRecord{}, r.notPending(ctx, q, id)
	}
	return paid, err
}

func (r *salaryRepositoryImpl) DeletePending(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return payroll.ErrSalaryRecordNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_records WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return r.notPending(ctx, q, id)
	}
	return nil
}

func (r *salaryRepositoryImpl) notPending(ctx context.Context, q database.Querier, id string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salary_records WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return payroll.ErrSalaryRecordNotFound
	}
	return payroll.ErrInvalidTransition
}
