package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	id, employee_id::text, leave_type, start_date, end_date, days_count, reason,
	status, approver_id::text, comments, applied_date, approved_date, updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.DaysCount,
		&lr.Reason,
		&lr.Status,
		&lr.ApproverID,
		&lr.Comments,
		&lr.AppliedDate,
		&lr.ApprovedDate,
		&lr.UpdatedAt,
	)
	return lr, err
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	request.ID = uuid.Must(uuid.NewV7()).String()
	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type, start_date, end_date, days_count,
			reason, status, applied_date, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.LeaveType,
		request.StartDate, request.EndDate, request.DaysCount,
		request.Reason, request.Status, request.AppliedDate,
	))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("insert leave request: %w", err)
	}
	return created, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	lr, err := scanLeaveRequest(q.QueryRow(ctx, `SELECT `+leaveRequestColumns+` FROM leave_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return lr, err
}

func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := " WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil {
		baseWhere += fmt.Sprintf(" AND employee_id::text = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.LeaveType != nil {
		baseWhere += fmt.Sprintf(" AND leave_type = $%d", argIdx)
		args = append(args, *filter.LeaveType)
		argIdx++
	}
	if filter.Year != nil {
		baseWhere += fmt.Sprintf(" AND EXTRACT(YEAR FROM start_date)::INT = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests`+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}

	limit, pageArgs := pageClause(filter.Page, filter.Limit, argIdx)
	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests` + baseWhere +
		` ORDER BY applied_date DESC, id DESC` + limit

	rows, err := q.Query(ctx, query, append(args, pageArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, lr)
	}
	return requests, total, rows.Err()
}

func (r *leaveRequestRepositoryImpl) UpdatePending(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET leave_type = $2, start_date = $3, end_date = $4, days_count = $5,
			reason = $6, updated_at = $7
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + leaveRequestColumns

	updated, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.ID, request.LeaveType, request.StartDate, request.EndDate,
		request.DaysCount, request.Reason, request.UpdatedAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveRequest{}, r.notPending(ctx, q, request.ID)
	}
	return updated, err
}

// Decide only matches PENDING rows, so two racing decisions cannot both win
// even across processes.
func (r *leaveRequestRepositoryImpl) Decide(ctx context.Context, id string, status leave.Status, approverID string, comments *string, at time.Time) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, approver_id = $3, comments = $4, approved_date = $5, updated_at = $5
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + leaveRequestColumns

	decided, err := scanLeaveRequest(q.QueryRow(ctx, query, id, status, approverID, comments, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveRequest{}, r.notPending(ctx, q, id)
	}
	return decided, err
}

func (r *leaveRequestRepositoryImpl) DeletePending(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return r.notPending(ctx, q, id)
	}
	return nil
}

// notPending explains why a conditional write matched nothing.
func (r *leaveRequestRepositoryImpl) notPending(ctx context.Context, q database.Querier, id string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leave_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return leave.ErrLeaveRequestNotFound
	}
	return leave.ErrInvalidTransition
}

func (r *leaveRequestRepositoryImpl) SumDays(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int, excludeID string) (leave.Usage, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COALESCE(SUM(days_count) FILTER (WHERE status = 'APPROVED'), 0),
			COALESCE(SUM(days_count) FILTER (WHERE status = 'PENDING'), 0)
		FROM leave_requests
		WHERE employee_id::text = $1
			AND leave_type = $2
			AND EXTRACT(YEAR FROM start_date)::INT = $3
			AND id::text <> $4
	`
	var u leave.Usage
	if err := q.QueryRow(ctx, query, employeeID, leaveType, year, excludeID).Scan(&u.Approved, &u.Pending); err != nil {
		return leave.Usage{}, fmt.Errorf("sum leave days: %w", err)
	}
	return u, nil
}

// LockBalance takes a transaction-scoped advisory lock on the balance key.
// Outside a transaction it is released as soon as the statement ends.
func (r *leaveRequestRepositoryImpl) LockBalance(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) error {
	q := GetQuerier(ctx, r.db)

	key := fmt.Sprintf("leave_balance:%s:%s:%d", employeeID, leaveType, year)
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	return err
}
