package core

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
    id, company_id, COALESCE(employee_number, ''), first_name, last_name, email,
    COALESCE(phone, ''),
    COALESCE(department_id::text, ''),
    COALESCE(designation_id::text, ''),
    COALESCE(role_level_id::text, ''),
    COALESCE(reporting_manager_id::text, ''),
    join_date, exit_date, status,
    education, experience, documents, ctc_components, assets, bank_info,
    created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var ctcRaw []byte
	err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.Phone, &emp.DepartmentID, &emp.DesignationID, &emp.RoleLevelID, &emp.ReportingManagerID,
		&emp.JoinDate, &emp.ExitDate, &emp.Status,
		&emp.Education, &emp.Experience, &emp.Documents, &ctcRaw, &emp.Assets, &emp.BankInfo,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return Employee{}, err
	}
	if len(ctcRaw) > 0 {
		if err := json.Unmarshal(ctcRaw, &emp.CTCComponents); err != nil {
			return Employee{}, err
		}
	}
	return emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, companyID, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE company_id = $1 AND id = $2",
		companyID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

// EmployeeByUserEmail resolves the session user to their HR record. The link
// is by email, not by foreign key.
func (s *Store) EmployeeByUserEmail(ctx context.Context, companyID, email string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE company_id = $1 AND lower(email) = lower($2)",
		companyID, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context, companyID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE company_id = $1 ORDER BY first_name, last_name",
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) ListEmployeesByManager(ctx context.Context, companyID, managerEmployeeID string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE company_id = $1 AND reporting_manager_id = $2 ORDER BY first_name, last_name",
		companyID, managerEmployeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, companyID string, emp Employee) (string, error) {
	ctcRaw, err := json.Marshal(emp.CTCComponents)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO employees (
      company_id, employee_number, first_name, last_name, email, phone,
      department_id, designation_id, role_level_id, reporting_manager_id,
      join_date, exit_date, status,
      education, experience, documents, ctc_components, assets, bank_info
    ) VALUES (
      $1, $2, $3, $4, $5, $6,
      NULLIF($7, '')::uuid, NULLIF($8, '')::uuid, NULLIF($9, '')::uuid, NULLIF($10, '')::uuid,
      $11, $12, $13,
      $14, $15, $16, $17, $18, $19
    )
    RETURNING id
  `, companyID, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.DepartmentID, emp.DesignationID, emp.RoleLevelID, emp.ReportingManagerID,
		emp.JoinDate, emp.ExitDate, emp.Status,
		rawOrNull(emp.Education), rawOrNull(emp.Experience), rawOrNull(emp.Documents),
		ctcRaw, rawOrNull(emp.Assets), rawOrNull(emp.BankInfo)).Scan(&id)
	return id, err
}

// UpdateEmployee rewrites every mutable column; company_id is intentionally
// absent from the SET list.
func (s *Store) UpdateEmployee(ctx context.Context, companyID, employeeID string, emp Employee) error {
	ctcRaw, err := json.Marshal(emp.CTCComponents)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = $3, first_name = $4, last_name = $5, email = $6, phone = $7,
        department_id = NULLIF($8, '')::uuid,
        designation_id = NULLIF($9, '')::uuid,
        role_level_id = NULLIF($10, '')::uuid,
        reporting_manager_id = NULLIF($11, '')::uuid,
        join_date = $12, exit_date = $13, status = $14,
        education = $15, experience = $16, documents = $17,
        ctc_components = $18, assets = $19, bank_info = $20,
        updated_at = now()
    WHERE company_id = $1 AND id = $2
  `, companyID, employeeID,
		emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.DepartmentID, emp.DesignationID, emp.RoleLevelID, emp.ReportingManagerID,
		emp.JoinDate, emp.ExitDate, emp.Status,
		rawOrNull(emp.Education), rawOrNull(emp.Experience), rawOrNull(emp.Documents),
		ctcRaw, rawOrNull(emp.Assets), rawOrNull(emp.BankInfo))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, companyID, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE company_id = $1 AND id = $2", companyID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func rawOrNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
