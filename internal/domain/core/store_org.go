package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) ListDepartments(ctx context.Context, companyID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, company_id, name, COALESCE(code, ''), created_at
    FROM departments
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Name, &d.Code, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, companyID, name, code string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx,
		"INSERT INTO departments (company_id, name, code) VALUES ($1, $2, NULLIF($3, '')) RETURNING id",
		companyID, name, code).Scan(&id)
	return id, err
}

func (s *Store) UpdateDepartment(ctx context.Context, companyID, id, name, code string) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE departments SET name = $3, code = NULLIF($4, '') WHERE company_id = $1 AND id = $2",
		companyID, id, name, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDepartment(ctx context.Context, companyID, id string) error {
	return s.deleteScoped(ctx, "departments", companyID, id)
}

func (s *Store) ListDesignations(ctx context.Context, companyID string) ([]Designation, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT id, company_id, name, created_at FROM designations WHERE company_id = $1 ORDER BY name",
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Designation
	for rows.Next() {
		var d Designation
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateDesignation(ctx context.Context, companyID, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx,
		"INSERT INTO designations (company_id, name) VALUES ($1, $2) RETURNING id",
		companyID, name).Scan(&id)
	return id, err
}

func (s *Store) UpdateDesignation(ctx context.Context, companyID, id, name string) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE designations SET name = $3 WHERE company_id = $1 AND id = $2",
		companyID, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDesignation(ctx context.Context, companyID, id string) error {
	return s.deleteScoped(ctx, "designations", companyID, id)
}

func (s *Store) ListRoleLevels(ctx context.Context, companyID string) ([]RoleLevel, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT id, company_id, name, level, created_at FROM role_levels WHERE company_id = $1 ORDER BY level, name",
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RoleLevel
	for rows.Next() {
		var rl RoleLevel
		if err := rows.Scan(&rl.ID, &rl.CompanyID, &rl.Name, &rl.Level, &rl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rl)
	}
	return out, rows.Err()
}

func (s *Store) CreateRoleLevel(ctx context.Context, companyID, name string, level int) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx,
		"INSERT INTO role_levels (company_id, name, level) VALUES ($1, $2, $3) RETURNING id",
		companyID, name, level).Scan(&id)
	return id, err
}

func (s *Store) UpdateRoleLevel(ctx context.Context, companyID, id, name string, level int) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE role_levels SET name = $3, level = $4 WHERE company_id = $1 AND id = $2",
		companyID, id, name, level)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteRoleLevel(ctx context.Context, companyID, id string) error {
	return s.deleteScoped(ctx, "role_levels", companyID, id)
}

func (s *Store) ListCTCComponents(ctx context.Context, companyID string) ([]CTCComponent, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT id, company_id, name, component_type, taxable, created_at FROM ctc_components WHERE company_id = $1 ORDER BY name",
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CTCComponent
	for rows.Next() {
		var c CTCComponent
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.ComponentType, &c.Taxable, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCTCComponent(ctx context.Context, companyID, name, componentType string, taxable bool) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx,
		"INSERT INTO ctc_components (company_id, name, component_type, taxable) VALUES ($1, $2, $3, $4) RETURNING id",
		companyID, name, componentType, taxable).Scan(&id)
	return id, err
}

func (s *Store) UpdateCTCComponent(ctx context.Context, companyID, id, name, componentType string, taxable bool) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE ctc_components SET name = $3, component_type = $4, taxable = $5 WHERE company_id = $1 AND id = $2",
		companyID, id, name, componentType, taxable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCTCComponent(ctx context.Context, companyID, id string) error {
	return s.deleteScoped(ctx, "ctc_components", companyID, id)
}

func (s *Store) ListShifts(ctx context.Context, companyID string) ([]Shift, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT id, company_id, name, start_time, end_time, created_at FROM shifts WHERE company_id = $1 ORDER BY name",
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shift
	for rows.Next() {
		var sh Shift
		if err := rows.Scan(&sh.ID, &sh.CompanyID, &sh.Name, &sh.StartTime, &sh.EndTime, &sh.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *Store) CreateShift(ctx context.Context, companyID, name, startTime, endTime string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx,
		"INSERT INTO shifts (company_id, name, start_time, end_time) VALUES ($1, $2, $3, $4) RETURNING id",
		companyID, name, startTime, endTime).Scan(&id)
	return id, err
}

func (s *Store) UpdateShift(ctx context.Context, companyID, id, name, startTime, endTime string) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE shifts SET name = $3, start_time = $4, end_time = $5 WHERE company_id = $1 AND id = $2",
		companyID, id, name, startTime, endTime)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteShift(ctx context.Context, companyID, id string) error {
	return s.deleteScoped(ctx, "shifts", companyID, id)
}

func (s *Store) ListHolidays(ctx context.Context, companyID string) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT id, company_id, date, name, created_at FROM holidays WHERE company_id = $1 ORDER BY date",
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, companyID string, date time.Time, name string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx,
		"INSERT INTO holidays (company_id, date, name) VALUES ($1, $2, $3) RETURNING id",
		companyID, date, name).Scan(&id)
	return id, err
}

func (s *Store) DeleteHoliday(ctx context.Context, companyID, id string) error {
	return s.deleteScoped(ctx, "holidays", companyID, id)
}

func (s *Store) deleteScoped(ctx context.Context, table, companyID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM "+table+" WHERE company_id = $1 AND id = $2", companyID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
