package leave

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTypes(ctx context.Context, companyID string) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, company_id, name, COALESCE(code, ''), is_paid, max_per_year, created_at
    FROM leave_types
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveType
	for rows.Next() {
		var t LeaveType
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Code, &t.IsPaid, &t.MaxPerYear, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateType(ctx context.Context, companyID string, t LeaveType) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (company_id, name, code, is_paid, max_per_year)
    VALUES ($1, $2, NULLIF($3, ''), $4, $5)
    RETURNING id
  `, companyID, t.Name, t.Code, t.IsPaid, t.MaxPerYear).Scan(&id)
	return id, err
}

func (s *Store) UpdateType(ctx context.Context, companyID, id string, t LeaveType) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_types
    SET name = $3, code = NULLIF($4, ''), is_paid = $5, max_per_year = $6
    WHERE company_id = $1 AND id = $2
  `, companyID, id, t.Name, t.Code, t.IsPaid, t.MaxPerYear)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteType(ctx context.Context, companyID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM leave_types WHERE company_id = $1 AND id = $2", companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const requestColumns = `
    id, company_id, employee_id, leave_type_id, start_date, end_date, days,
    COALESCE(reason, ''), status, COALESCE(reviewed_by::text, ''), reviewed_at, created_at`

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID, &req.CompanyID, &req.EmployeeID, &req.LeaveTypeID, &req.StartDate, &req.EndDate,
		&req.Days, &req.Reason, &req.Status, &req.ReviewedBy, &req.ReviewedAt, &req.CreatedAt,
	)
	return req, err
}

func (s *Store) GetRequest(ctx context.Context, companyID, id string) (Request, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM leave_requests WHERE company_id = $1 AND id = $2", companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

// ListRequests narrows by employee or by reporting manager when either id is
// supplied; both empty returns the whole company.
func (s *Store) ListRequests(ctx context.Context, companyID, employeeID, managerEmployeeID string) ([]Request, error) {
	query := "SELECT " + requestColumns + " FROM leave_requests WHERE company_id = $1"
	args := []any{companyID}
	if employeeID != "" {
		query += " AND employee_id = $2"
		args = append(args, employeeID)
	} else if managerEmployeeID != "" {
		query += " AND employee_id IN (SELECT id FROM employees WHERE company_id = $1 AND reporting_manager_id = $2)"
		args = append(args, managerEmployeeID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *Store) CreateRequest(ctx context.Context, req Request) (Request, error) {
	created, err := scanRequest(s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (company_id, employee_id, leave_type_id, start_date, end_date, days, reason, status)
    VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
    RETURNING `+requestColumns,
		req.CompanyID, req.EmployeeID, req.LeaveTypeID, req.StartDate, req.EndDate, req.Days, req.Reason, StatusPending))
	return created, err
}

// ReviewRequest decides a pending request; any other starting status fails.
func (s *Store) ReviewRequest(ctx context.Context, companyID, id, reviewerUserID, status string) (Request, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, `
    UPDATE leave_requests
    SET status = $3, reviewed_by = $4, reviewed_at = now()
    WHERE company_id = $1 AND id = $2 AND status = $5
    RETURNING `+requestColumns,
		companyID, id, status, reviewerUserID, StatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrInvalidState
	}
	return req, err
}

// CancelRequest lets the employee withdraw their own pending request.
func (s *Store) CancelRequest(ctx context.Context, companyID, id, employeeID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET status = $4
    WHERE company_id = $1 AND id = $2 AND employee_id = $3 AND status = $5
  `, companyID, id, employeeID, StatusCancelled, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}
