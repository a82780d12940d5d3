package expense

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

const typeColumns = "id, company_id, name, COALESCE(description, ''), role_level_limits, enable_google_maps, bill_mandatory, approval_required, created_at"

func scanType(row pgx.Row) (ExpenseType, error) {
	var t ExpenseType
	var limitsRaw []byte
	err := row.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Description, &limitsRaw,
		&t.EnableGoogleMaps, &t.BillMandatory, &t.ApprovalRequired, &t.CreatedAt)
	if err != nil {
		return ExpenseType{}, err
	}
	if len(limitsRaw) > 0 {
		if err := json.Unmarshal(limitsRaw, &t.RoleLevelLimits); err != nil {
			return ExpenseType{}, err
		}
	}
	return t, nil
}

func (s *Service) ListTypes(ctx context.Context, companyID string) ([]ExpenseType, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+typeColumns+" FROM expense_types WHERE company_id = $1 ORDER BY name", companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExpenseType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Service) GetType(ctx context.Context, companyID, typeID string) (ExpenseType, error) {
	t, err := scanType(s.DB.QueryRow(ctx,
		"SELECT "+typeColumns+" FROM expense_types WHERE company_id = $1 AND id = $2", companyID, typeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ExpenseType{}, ErrNotFound
	}
	return t, err
}

func (s *Service) CreateType(ctx context.Context, companyID string, t ExpenseType) (string, error) {
	limitsRaw, err := json.Marshal(t.RoleLevelLimits)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO expense_types (company_id, name, description, role_level_limits, enable_google_maps, bill_mandatory, approval_required)
    VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
    RETURNING id
  `, companyID, t.Name, t.Description, limitsRaw, t.EnableGoogleMaps, t.BillMandatory, t.ApprovalRequired).Scan(&id)
	return id, err
}

func (s *Service) UpdateType(ctx context.Context, companyID, typeID string, t ExpenseType) error {
	limitsRaw, err := json.Marshal(t.RoleLevelLimits)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE expense_types
    SET name = $3, description = NULLIF($4, ''), role_level_limits = $5,
        enable_google_maps = $6, bill_mandatory = $7, approval_required = $8
    WHERE company_id = $1 AND id = $2
  `, companyID, typeID, t.Name, t.Description, limitsRaw, t.EnableGoogleMaps, t.BillMandatory, t.ApprovalRequired)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteType(ctx context.Context, companyID, typeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM expense_types WHERE company_id = $1 AND id = $2", companyID, typeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const claimColumns = `
    id, company_id, employee_id, claim_number, month, year, total_amount, status,
    submitted_at,
    COALESCE(manager_reviewed_by::text, ''), manager_reviewed_at, COALESCE(manager_remarks, ''),
    COALESCE(admin_disbursed_by::text, ''), admin_disbursed_at,
    created_at, updated_at`

func scanClaim(row pgx.Row) (Claim, error) {
	var c Claim
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.EmployeeID, &c.ClaimNumber, &c.Month, &c.Year, &c.TotalAmount, &c.Status,
		&c.SubmittedAt, &c.ManagerReviewedBy, &c.ManagerReviewedAt, &c.ManagerRemarks,
		&c.AdminDisbursedBy, &c.AdminDisbursedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (s *Service) GetClaim(ctx context.Context, companyID, claimID string) (Claim, error) {
	c, err := scanClaim(s.DB.QueryRow(ctx,
		"SELECT "+claimColumns+" FROM expense_claims WHERE company_id = $1 AND id = $2", companyID, claimID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Claim{}, ErrNotFound
	}
	return c, err
}

// ListClaims applies the role view: the manager view returns claims of
// employees whose reporting manager is the caller, always scoped to the
// caller's own company.
func (s *Service) ListClaims(ctx context.Context, companyID string, filter ListFilter, callerEmployeeID string) ([]Claim, error) {
	query := "SELECT " + claimColumns + " FROM expense_claims WHERE company_id = $1"
	args := []any{companyID}

	switch filter.View {
	case "manager":
		query += " AND employee_id IN (SELECT id FROM employees WHERE company_id = $1 AND reporting_manager_id = $2)"
		args = append(args, callerEmployeeID)
	case "employee":
		query += " AND employee_id = $2"
		args = append(args, callerEmployeeID)
	default:
		if filter.EmployeeID != "" {
			query += " AND employee_id = $2"
			args = append(args, filter.EmployeeID)
		}
	}
	if filter.Status != "" {
		query += " AND status = $" + strconv.Itoa(len(args)+1)
		args = append(args, filter.Status)
	}
	query += " ORDER BY year DESC, month DESC, created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Service) CreateClaim(ctx context.Context, companyID, employeeID string, month, year int) (Claim, error) {
	var seq int64
	if err := s.DB.QueryRow(ctx, "SELECT nextval('expense_claim_seq')").Scan(&seq); err != nil {
		return Claim{}, err
	}
	claimNumber := NewClaimNumber(month, year, seq)

	c, err := scanClaim(s.DB.QueryRow(ctx, `
    INSERT INTO expense_claims (company_id, employee_id, claim_number, month, year, total_amount, status)
    VALUES ($1, $2, $3, $4, $5, 0, $6)
    RETURNING `+claimColumns, companyID, employeeID, claimNumber, month, year, StatusDraft))
	return c, err
}

func (s *Service) UpdateClaim(ctx context.Context, companyID, claimID string, patch ClaimPatch) (Claim, error) {
	c, err := scanClaim(s.DB.QueryRow(ctx, `
    UPDATE expense_claims
    SET claim_number = COALESCE($3, claim_number),
        month = COALESCE($4, month),
        year = COALESCE($5, year),
        updated_at = now()
    WHERE company_id = $1 AND id = $2
    RETURNING `+claimColumns, companyID, claimID, patch.ClaimNumber, patch.Month, patch.Year))
	if errors.Is(err, pgx.ErrNoRows) {
		return Claim{}, ErrNotFound
	}
	return c, err
}

// DeleteClaim removes a draft claim; items go with it via the cascade.
func (s *Service) DeleteClaim(ctx context.Context, companyID, claimID string) error {
	tag, err := s.DB.Exec(ctx,
		"DELETE FROM expense_claims WHERE company_id = $1 AND id = $2 AND status = $3",
		companyID, claimID, StatusDraft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *Service) SubmitClaim(ctx context.Context, companyID, claimID string) (Claim, error) {
	claim, err := s.GetClaim(ctx, companyID, claimID)
	if err != nil {
		return Claim{}, err
	}
	if !CanTransition(claim.Status, StatusPendingApproval) {
		return Claim{}, ErrInvalidState
	}

	var itemCount int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM expense_claim_items WHERE claim_id = $1", claimID).Scan(&itemCount); err != nil {
		return Claim{}, err
	}
	if itemCount == 0 {
		return Claim{}, ErrEmptyClaim
	}

	c, err := scanClaim(s.DB.QueryRow(ctx, `
    UPDATE expense_claims
    SET status = $3, submitted_at = now(), updated_at = now()
    WHERE company_id = $1 AND id = $2 AND status = $4
    RETURNING `+claimColumns, companyID, claimID, StatusPendingApproval, StatusDraft))
	if errors.Is(err, pgx.ErrNoRows) {
		return Claim{}, ErrInvalidState
	}
	return c, err
}

// ReviewClaim records a manager approval or rejection. The caller must
// already be verified as the claim employee's reporting manager.
func (s *Service) ReviewClaim(ctx context.Context, companyID, claimID, reviewerUserID, remarks string, approve bool) (Claim, error) {
	next := StatusApproved
	if !approve {
		next = StatusRejected
		if remarks == "" {
			remarks = DefaultRejectRemarks
		}
	}

	c, err := scanClaim(s.DB.QueryRow(ctx, `
    UPDATE expense_claims
    SET status = $3, manager_reviewed_by = $4, manager_reviewed_at = now(),
        manager_remarks = NULLIF($5, ''), updated_at = now()
    WHERE company_id = $1 AND id = $2 AND status = $6
    RETURNING `+claimColumns, companyID, claimID, next, reviewerUserID, remarks, StatusPendingApproval))
	if errors.Is(err, pgx.ErrNoRows) {
		return Claim{}, ErrInvalidState
	}
	return c, err
}

func (s *Service) DisburseClaim(ctx context.Context, companyID, claimID, adminUserID string) (Claim, error) {
	c, err := scanClaim(s.DB.QueryRow(ctx, `
    UPDATE expense_claims
    SET status = $3, admin_disbursed_by = $4, admin_disbursed_at = now(), updated_at = now()
    WHERE company_id = $1 AND id = $2 AND status = $5
    RETURNING `+claimColumns, companyID, claimID, StatusDisbursed, adminUserID, StatusApproved))
	if errors.Is(err, pgx.ErrNoRows) {
		return Claim{}, ErrInvalidState
	}
	return c, err
}

const itemColumns = `
    id, claim_id, expense_type_id, date, amount,
    COALESCE(description, ''), COALESCE(bill_reference, ''),
    COALESCE(from_location, ''), COALESCE(to_location, ''), COALESCE(distance_km, 0),
    created_at, updated_at`

func scanItem(row pgx.Row) (ClaimItem, error) {
	var item ClaimItem
	err := row.Scan(
		&item.ID, &item.ClaimID, &item.ExpenseTypeID, &item.Date, &item.Amount,
		&item.Description, &item.BillReference, &item.FromLocation, &item.ToLocation, &item.DistanceKM,
		&item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func (s *Service) ListItems(ctx context.Context, claimID string) ([]ClaimItem, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+itemColumns+" FROM expense_claim_items WHERE claim_id = $1 ORDER BY date, created_at", claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClaimItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Service) GetItem(ctx context.Context, itemID string) (ClaimItem, error) {
	item, err := scanItem(s.DB.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM expense_claim_items WHERE id = $1", itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return ClaimItem{}, ErrNotFound
	}
	return item, err
}

// AddItem inserts the line item and recomputes the claim total inside one
// transaction, so concurrent item mutations cannot leave a stale total.
func (s *Service) AddItem(ctx context.Context, claimID string, item ClaimItem) (ClaimItem, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ClaimItem{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanItem(tx.QueryRow(ctx, `
    INSERT INTO expense_claim_items (claim_id, expense_type_id, date, amount, description, bill_reference, from_location, to_location, distance_km)
    VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, 0))
    RETURNING `+itemColumns,
		claimID, item.ExpenseTypeID, item.Date, item.Amount,
		item.Description, item.BillReference, item.FromLocation, item.ToLocation, item.DistanceKM))
	if err != nil {
		return ClaimItem{}, err
	}

	if err := recalculateClaimTotal(ctx, tx, claimID); err != nil {
		return ClaimItem{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ClaimItem{}, err
	}
	return created, nil
}

func (s *Service) UpdateItem(ctx context.Context, itemID string, item ClaimItem) (ClaimItem, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ClaimItem{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updated, err := scanItem(tx.QueryRow(ctx, `
    UPDATE expense_claim_items
    SET expense_type_id = $2, date = $3, amount = $4,
        description = NULLIF($5, ''), bill_reference = NULLIF($6, ''),
        from_location = NULLIF($7, ''), to_location = NULLIF($8, ''),
        distance_km = NULLIF($9, 0),
        updated_at = now()
    WHERE id = $1
    RETURNING `+itemColumns,
		itemID, item.ExpenseTypeID, item.Date, item.Amount,
		item.Description, item.BillReference, item.FromLocation, item.ToLocation, item.DistanceKM))
	if errors.Is(err, pgx.ErrNoRows) {
		return ClaimItem{}, ErrNotFound
	}
	if err != nil {
		return ClaimItem{}, err
	}

	if err := recalculateClaimTotal(ctx, tx, updated.ClaimID); err != nil {
		return ClaimItem{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ClaimItem{}, err
	}
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, itemID, claimID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, "DELETE FROM expense_claim_items WHERE id = $1 AND claim_id = $2", itemID, claimID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := recalculateClaimTotal(ctx, tx, claimID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func recalculateClaimTotal(ctx context.Context, tx pgx.Tx, claimID string) error {
	_, err := tx.Exec(ctx, `
    UPDATE expense_claims
    SET total_amount = COALESCE((SELECT SUM(amount) FROM expense_claim_items WHERE claim_id = $1), 0),
        updated_at = now()
    WHERE id = $1
  `, claimID)
	return err
}
