package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/personalai/assistant/internal/models"
)

type dbTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Store is the typed repository over employees, departments, reservations,
// appointments and schedules.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// ─── Employees ────────────────────────────────────────────────────────────────

const employeeColumns = `id, name, salary, dept_id, hiring_personal_id`

func scanEmployee(row scanner) (models.Employee, error) {
	var e models.Employee
	var salary, dept, hp sql.NullInt64
	if err := row.Scan(&e.ID, &e.Name, &salary, &dept, &hp); err != nil {
		return models.Employee{}, err
	}
	e.Salary = nullInt(salary)
	e.DeptID = nullInt(dept)
	e.HiringPersonalID = nullInt(hp)
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return out, nil
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (models.Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		return models.Employee{}, fmt.Errorf("get employee %d: %w", id, translate(err))
	}
	return e, nil
}

func (s *Store) CreateEmployee(ctx context.Context, in models.EmployeeInput) (models.Employee, error) {
	query := `
INSERT INTO employees (name, salary, dept_id, hiring_personal_id)
VALUES ($1, $2, $3, $4)
RETURNING ` + employeeColumns
	e, err := scanEmployee(s.db.QueryRowContext(ctx, query, in.Name, in.Salary, in.DeptID, in.HiringPersonalID))
	if err != nil {
		return models.Employee{}, fmt.Errorf("create employee: %w", translate(err))
	}
	return e, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, id int64, in models.EmployeeInput) (models.Employee, error) {
	query := `
UPDATE employees SET name = $2, salary = $3, dept_id = $4, hiring_personal_id = $5
WHERE id = $1
RETURNING ` + employeeColumns
	e, err := scanEmployee(s.db.QueryRowContext(ctx, query, id, in.Name, in.Salary, in.DeptID, in.HiringPersonalID))
	if err != nil {
		return models.Employee{}, fmt.Errorf("update employee %d: %w", id, translate(err))
	}
	return e, nil
}

// DeleteEmployee removes the employee and returns it; department membership rows cascade.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) (models.Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx, `DELETE FROM employees WHERE id = $1 RETURNING `+employeeColumns, id))
	if err != nil {
		return models.Employee{}, fmt.Errorf("delete employee %d: %w", id, translate(err))
	}
	return e, nil
}

// ─── Departments ──────────────────────────────────────────────────────────────

func (s *Store) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Department{}
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return out, nil
}

func (s *Store) GetDepartment(ctx context.Context, id int64) (models.Department, error) {
	var d models.Department
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM departments WHERE id = $1`, id).Scan(&d.ID, &d.Name)
	if err != nil {
		return models.Department{}, fmt.Errorf("get department %d: %w", id, translate(err))
	}
	return d, nil
}

func (s *Store) CreateDepartment(ctx context.Context, in models.DepartmentInput) (models.Department, error) {
	var d models.Department
	err := s.db.QueryRowContext(ctx, `INSERT INTO departments (name) VALUES ($1) RETURNING id, name`, in.Name).
		Scan(&d.ID, &d.Name)
	if err != nil {
		return models.Department{}, fmt.Errorf("create department: %w", translate(err))
	}
	return d, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, id int64, in models.DepartmentInput) (models.Department, error) {
	var d models.Department
	err := s.db.QueryRowContext(ctx, `UPDATE departments SET name = $2 WHERE id = $1 RETURNING id, name`, id, in.Name).
		Scan(&d.ID, &d.Name)
	if err != nil {
		return models.Department{}, fmt.Errorf("update department %d: %w", id, translate(err))
	}
	return d, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id int64) (models.Department, error) {
	var d models.Department
	err := s.db.QueryRowContext(ctx, `DELETE FROM departments WHERE id = $1 RETURNING id, name`, id).Scan(&d.ID, &d.Name)
	if err != nil {
		return models.Department{}, fmt.Errorf("delete department %d: %w", id, translate(err))
	}
	return d, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
