package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusHalfDay = "half_day"
	StatusOnLeave = "on_leave"
	StatusHoliday = "holiday"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusHalfDay, StatusOnLeave, StatusHoliday}

var ErrNotFound = errors.New("attendance record not found")

type Record struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"companyId"`
	EmployeeID string     `json:"employeeId"`
	Date       time.Time  `json:"date"`
	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	Status     string     `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const recordColumns = `
    id, company_id, employee_id, date, check_in, check_out, status, COALESCE(notes, ''), created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.CompanyID, &rec.EmployeeID, &rec.Date, &rec.CheckIn, &rec.CheckOut,
		&rec.Status, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (s *Store) Get(ctx context.Context, companyID, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx,
		"SELECT "+recordColumns+" FROM attendance_records WHERE company_id = $1 AND id = $2", companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// List returns every record in the company, or one employee's records when
// employeeID is set. Employee callers are always narrowed to themselves by
// the handler.
func (s *Store) List(ctx context.Context, companyID, employeeID string) ([]Record, error) {
	query := "SELECT " + recordColumns + " FROM attendance_records WHERE company_id = $1"
	args := []any{companyID}
	if employeeID != "" {
		query += " AND employee_id = $2"
		args = append(args, employeeID)
	}
	query += " ORDER BY date DESC"

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

func (s *Store) Create(ctx context.Context, rec Record) (Record, error) {
	created, err := scanRecord(s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (company_id, employee_id, date, check_in, check_out, status, notes)
    VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
    RETURNING `+recordColumns,
		rec.CompanyID, rec.EmployeeID, rec.Date, rec.CheckIn, rec.CheckOut, rec.Status, rec.Notes))
	return created, err
}

func (s *Store) Update(ctx context.Context, companyID, id string, rec Record) (Record, error) {
	updated, err := scanRecord(s.DB.QueryRow(ctx, `
    UPDATE attendance_records
    SET date = $3, check_in = $4, check_out = $5, status = $6, notes = NULLIF($7, ''), updated_at = now()
    WHERE company_id = $1 AND id = $2
    RETURNING `+recordColumns,
		companyID, id, rec.Date, rec.CheckIn, rec.CheckOut, rec.Status, rec.Notes))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return updated, err
}

func (s *Store) Delete(ctx context.Context, companyID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM attendance_records WHERE company_id = $1 AND id = $2", companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
