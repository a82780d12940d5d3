package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/auth"
	"hrms/internal/platform/config"
)

// Seed creates the bootstrap super admin when the seed env vars are set.
// It is a no-op when the user already exists or the vars are empty.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedSuperAdminEmail))
	password := cfg.SeedSuperAdminPassword
	if email == "" || password == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (email, password_hash, name, role, company_id, status)
		VALUES ($1, $2, $3, $4, NULL, $5)`,
		email, hash, "Super Admin", auth.RoleSuperAdmin, auth.UserStatusActive)
	return err
}
