package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveQuotaRepositoryImpl struct {
	db *database.DB
}

func NewLeaveQuotaRepository(db *database.DB) leave.LeaveQuotaRepository {
	return &leaveQuotaRepositoryImpl{db: db}
}

const leaveQuotaColumns = `employee_id::text, leave_type, year, days, updated_at`

func scanLeaveQuota(row pgx.Row) (leave.LeaveQuota, error) {
	var q leave.LeaveQuota
	err := row.Scan(&q.EmployeeID, &q.LeaveType, &q.Year, &q.Days, &q.UpdatedAt)
	return q, err
}

// GetByEmployeeTypeYear implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) GetByEmployeeTypeYear(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (leave.LeaveQuota, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return leave.LeaveQuota{}, leave.ErrLeaveQuotaNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveQuotaColumns + `
		FROM leave_quotas
		WHERE employee_id = $1 AND leave_type = $2 AND year = $3
	`
	quota, err := scanLeaveQuota(q.QueryRow(ctx, query, employeeID, leaveType, year))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveQuota{}, leave.ErrLeaveQuotaNotFound
	}
	return quota, err
}

// GetByEmployeeYear implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.LeaveQuota, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return []leave.LeaveQuota{}, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveQuotaColumns + `
		FROM leave_quotas
		WHERE employee_id = $1 AND year = $2
		ORDER BY leave_type
	`
	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("query leave quotas: %w", err)
	}
	defer rows.Close()

	quotas := make([]leave.LeaveQuota, 0)
	for rows.Next() {
		quota, err := scanLeaveQuota(rows)
		if err != nil {
			return nil, err
		}
		quotas = append(quotas, quota)
	}
	return quotas, rows.Err()
}

// Upsert implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) Upsert(ctx context.Context, quota leave.LeaveQuota) (leave.LeaveQuota, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_quotas (employee_id, leave_type, year, days, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, leave_type, year)
		DO UPDATE SET days = EXCLUDED.days, updated_at = EXCLUDED.updated_at
		RETURNING ` + leaveQuotaColumns

	saved, err := scanLeaveQuota(q.QueryRow(ctx, query,
		quota.EmployeeID, quota.LeaveType, quota.Year, quota.Days, quota.UpdatedAt,
	))
	if err != nil {
		return leave.LeaveQuota{}, fmt.Errorf("upsert leave quota: %w", err)
	}
	return saved, nil
}
