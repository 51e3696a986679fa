package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"mawared/internal/domain/employee"
	"mawared/internal/store"
)

const employeeColumns = `
  id, first_name, last_name, email, nationality, work_week, join_date,
  base_salary, allowances, balances, status, version, created_at`

func (s *Store) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	rows, err := s.DB.Query(ctx, "SELECT"+employeeColumns+" FROM employees ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, id string) (employee.Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+employeeColumns+" FROM employees WHERE id = $1", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.Employee{}, store.ErrNotFound
	}
	return emp, err
}

func (s *Store) InsertEmployee(ctx context.Context, emp employee.Employee) error {
	allowances, balances, err := marshalEmployeeJSON(emp)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO employees (id, first_name, last_name, email, nationality, work_week, join_date,
                           base_salary, allowances, balances, status, version, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
  `, emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.Nationality, emp.WorkWeek, emp.JoinDate,
		emp.BaseSalary, allowances, balances, emp.Status, emp.Version, emp.CreatedAt)
	return err
}

func (s *Store) UpdateEmployee(ctx context.Context, emp employee.Employee) error {
	allowances, balances, err := marshalEmployeeJSON(emp)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $2, last_name = $3, email = $4, nationality = $5, work_week = $6,
        join_date = $7, base_salary = $8, allowances = $9, balances = $10, status = $11,
        version = version + 1
    WHERE id = $1 AND version = $12
  `, emp.ID, emp.FirstName, emp.LastName, emp.Email, emp.Nationality, emp.WorkWeek,
		emp.JoinDate, emp.BaseSalary, allowances, balances, emp.Status, emp.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)", emp.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrVersionConflict
	}
	return nil
}

func marshalEmployeeJSON(emp employee.Employee) ([]byte, []byte, error) {
	allowances, err := json.Marshal(emp.Allowances)
	if err != nil {
		return nil, nil, err
	}
	balances, err := json.Marshal(emp.Balances)
	if err != nil {
		return nil, nil, err
	}
	return allowances, balances, nil
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	var allowances, balances []byte
	if err := row.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Nationality,
		&emp.WorkWeek, &emp.JoinDate, &emp.BaseSalary, &allowances, &balances,
		&emp.Status, &emp.Version, &emp.CreatedAt); err != nil {
		return employee.Employee{}, err
	}
	if err := json.Unmarshal(allowances, &emp.Allowances); err != nil {
		return employee.Employee{}, err
	}
	if err := json.Unmarshal(balances, &emp.Balances); err != nil {
		return employee.Employee{}, err
	}
	return emp, nil
}
