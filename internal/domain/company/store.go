package company

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("company not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const companyColumns = "id, name, email, status, plan, max_employees, created_at, updated_at"

func (s *Store) List(ctx context.Context) ([]Company, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Status, &c.Plan, &c.MaxEmployees, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Company, error) {
	var c Company
	err := s.DB.QueryRow(ctx, "SELECT "+companyColumns+" FROM companies WHERE id = $1", id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Status, &c.Plan, &c.MaxEmployees, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	return c, err
}

func (s *Store) Create(ctx context.Context, c Company) (Company, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO companies (name, email, status, plan, max_employees)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING `+companyColumns, c.Name, c.Email, c.Status, c.Plan, c.MaxEmployees).
		Scan(&c.ID, &c.Name, &c.Email, &c.Status, &c.Plan, &c.MaxEmployees, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) Update(ctx context.Context, id string, patch Patch) (Company, error) {
	var c Company
	err := s.DB.QueryRow(ctx, `
    UPDATE companies
    SET name = COALESCE($2, name),
        status = COALESCE($3, status),
        plan = COALESCE($4, plan),
        max_employees = COALESCE($5, max_employees),
        updated_at = now()
    WHERE id = $1
    RETURNING `+companyColumns, id, patch.Name, patch.Status, patch.Plan, patch.MaxEmployees).
		Scan(&c.ID, &c.Name, &c.Email, &c.Status, &c.Plan, &c.MaxEmployees, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	return c, err
}

func (s *Store) EmployeeCount(ctx context.Context, companyID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE company_id = $1", companyID).Scan(&count)
	return count, err
}
