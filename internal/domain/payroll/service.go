package payroll

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/core"
)

type Service struct {
	DB   *pgxpool.Pool
	Core *core.Store
}

func NewService(db *pgxpool.Pool, coreStore *core.Store) *Service {
	return &Service{DB: db, Core: coreStore}
}

const recordColumns = `
    id, company_id, employee_id, month, year, gross_pay, deductions, net_pay,
    status, published, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.Month, &rec.Year,
		&rec.GrossPay, &rec.Deductions, &rec.NetPay, &rec.Status, &rec.Published,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (s *Service) Get(ctx context.Context, companyID, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx,
		"SELECT "+recordColumns+" FROM payroll_records WHERE company_id = $1 AND id = $2", companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// List returns company records; employeeID narrows to one employee and
// publishedOnly hides unpublished rows from employee callers.
func (s *Service) List(ctx context.Context, companyID, employeeID string, publishedOnly bool) ([]Record, error) {
	query := "SELECT " + recordColumns + " FROM payroll_records WHERE company_id = $1"
	args := []any{companyID}
	if employeeID != "" {
		query += " AND employee_id = $2"
		args = append(args, employeeID)
	}
	if publishedOnly {
		query += " AND published"
	}
	query += " ORDER BY year DESC, month DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Generate creates one pending record per employee for the period from their
// CTC assignments. Employees that already have a record for the period are
// skipped rather than overwritten.
func (s *Service) Generate(ctx context.Context, companyID string, month, year int, employeeIDs []string) (GenerateResult, error) {
	var result GenerateResult
	for _, employeeID := range employeeIDs {
		var exists int
		if err := s.DB.QueryRow(ctx, `
      SELECT COUNT(1) FROM payroll_records
      WHERE company_id = $1 AND employee_id = $2 AND month = $3 AND year = $4
    `, companyID, employeeID, month, year).Scan(&exists); err != nil {
			return result, err
		}
		if exists > 0 {
			result.Skipped = append(result.Skipped, employeeID)
			continue
		}

		emp, err := s.Core.GetEmployee(ctx, companyID, employeeID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				result.Skipped = append(result.Skipped, employeeID)
				continue
			}
			return result, err
		}

		gross, deductions, net := ComputePay(emp.CTCComponents)

		tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return result, err
		}

		rec, err := scanRecord(tx.QueryRow(ctx, `
      INSERT INTO payroll_records (company_id, employee_id, month, year, gross_pay, deductions, net_pay, status)
      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
      RETURNING `+recordColumns,
			companyID, employeeID, month, year, gross, deductions, net, StatusPending))
		if err != nil {
			_ = tx.Rollback(ctx)
			return result, err
		}

		for _, component := range emp.CTCComponents {
			if _, err := tx.Exec(ctx, `
        INSERT INTO payroll_items (record_id, name, component_type, amount)
        VALUES ($1, $2, $3, $4)
      `, rec.ID, component.Name, component.ComponentType, component.MonthlyAmount); err != nil {
				_ = tx.Rollback(ctx)
				return result, err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return result, err
		}
		result.Generated = append(result.Generated, rec)
	}
	return result, nil
}

func (s *Service) SetStatus(ctx context.Context, companyID, id, status string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx, `
    UPDATE payroll_records
    SET status = $3, updated_at = now()
    WHERE company_id = $1 AND id = $2 AND status = $4
    RETURNING `+recordColumns, companyID, id, status, StatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrInvalidState
	}
	return rec, err
}

// Publish makes an approved record visible to the employee.
func (s *Service) Publish(ctx context.Context, companyID, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx, `
    UPDATE payroll_records
    SET published = true, updated_at = now()
    WHERE company_id = $1 AND id = $2 AND status = $3
    RETURNING `+recordColumns, companyID, id, StatusApproved))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrInvalidState
	}
	return rec, err
}

func (s *Service) ListItems(ctx context.Context, recordID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT id, record_id, name, component_type, amount FROM payroll_items WHERE record_id = $1 ORDER BY name", recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.RecordID, &item.Name, &item.ComponentType, &item.Amount); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Delete only removes pending records; decided or published payroll stays.
func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	tag, err := s.DB.Exec(ctx,
		"DELETE FROM payroll_records WHERE company_id = $1 AND id = $2 AND status = $3",
		companyID, id, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}
