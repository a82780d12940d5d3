package workflow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("workflow not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const workflowColumns = `
    id, company_id, title, COALESCE(description, ''), assigned_to, assigned_by,
    status, progress, COALESCE(notes, ''), due_date, completed_at, created_at, updated_at`

func scanWorkflow(row pgx.Row) (Workflow, error) {
	var w Workflow
	err := row.Scan(
		&w.ID, &w.CompanyID, &w.Title, &w.Description, &w.AssignedTo, &w.AssignedBy,
		&w.Status, &w.Progress, &w.Notes, &w.DueDate, &w.CompletedAt, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

func (s *Store) Get(ctx context.Context, companyID, id string) (Workflow, error) {
	w, err := scanWorkflow(s.DB.QueryRow(ctx,
		"SELECT "+workflowColumns+" FROM workflows WHERE company_id = $1 AND id = $2", companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Workflow{}, ErrNotFound
	}
	return w, err
}

func (s *Store) List(ctx context.Context, companyID, assignedTo string) ([]Workflow, error) {
	query := "SELECT " + workflowColumns + " FROM workflows WHERE company_id = $1"
	args := []any{companyID}
	if assignedTo != "" {
		query += " AND assigned_to = $2"
		args = append(args, assignedTo)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, w Workflow) (Workflow, error) {
	created, err := scanWorkflow(s.DB.QueryRow(ctx, `
    INSERT INTO workflows (company_id, title, description, assigned_to, assigned_by, status, progress, notes, due_date)
    VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''), $9)
    RETURNING `+workflowColumns,
		w.CompanyID, w.Title, w.Description, w.AssignedTo, w.AssignedBy, w.Status, w.Progress, w.Notes, w.DueDate))
	return created, err
}

// Update applies a patch. completed_at tracks the status field: stamped when
// the workflow enters completed, cleared when it leaves.
func (s *Store) Update(ctx context.Context, companyID, id string, patch Patch) (Workflow, error) {
	w, err := scanWorkflow(s.DB.QueryRow(ctx, `
    UPDATE workflows
    SET title = COALESCE($3, title),
        description = COALESCE($4, description),
        assigned_to = COALESCE($5::uuid, assigned_to),
        status = COALESCE($6, status),
        progress = COALESCE($7, progress),
        notes = COALESCE($8, notes),
        due_date = COALESCE($9, due_date),
        completed_at = CASE
          WHEN $6::text IS NULL THEN completed_at
          WHEN $6::text = 'completed' AND status <> 'completed' THEN now()
          WHEN $6::text <> 'completed' THEN NULL
          ELSE completed_at
        END,
        updated_at = now()
    WHERE company_id = $1 AND id = $2
    RETURNING `+workflowColumns,
		companyID, id, patch.Title, patch.Description, patch.AssignedTo,
		patch.Status, patch.Progress, patch.Notes, patch.DueDate))
	if errors.Is(err, pgx.ErrNoRows) {
		return Workflow{}, ErrNotFound
	}
	return w, err
}

func (s *Store) Delete(ctx context.Context, companyID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM workflows WHERE company_id = $1 AND id = $2", companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
