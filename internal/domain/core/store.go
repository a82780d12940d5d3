package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, name, role, COALESCE(company_id::text, ''), status, mfa_enabled, created_at
    FROM users
    WHERE id = $1
  `, userID).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CompanyID, &u.Status, &u.MFAEnabled, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) ListUsersByCompany(ctx context.Context, companyID string) ([]User, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, email, name, role, COALESCE(company_id::text, ''), status, mfa_enabled, created_at
    FROM users
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CompanyID, &u.Status, &u.MFAEnabled, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, name, role, companyID, status string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, name, role, company_id, status)
    VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6)
    RETURNING id
  `, email, passwordHash, name, role, companyID, status).Scan(&id)
	return id, err
}

func (s *Store) UpdateUserStatus(ctx context.Context, companyID, userID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET status = $1 WHERE id = $2 AND company_id = $3", status, userID, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UserEmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)", email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
