package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"mawared/internal/domain/payroll"
	"mawared/internal/store"
)

const runColumns = "id, year, month, cycle, status, total_net, created_at"

func (s *Store) ListPayrollRuns(ctx context.Context) ([]payroll.Run, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+runColumns+" FROM payroll_runs ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) GetPayrollRun(ctx context.Context, id string) (payroll.Run, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+runColumns+" FROM payroll_runs WHERE id = $1", id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.Run{}, store.ErrNotFound
	}
	return run, err
}

func (s *Store) FindPayrollRun(ctx context.Context, period payroll.Period, status string) (payroll.Run, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+runColumns+` FROM payroll_runs
    WHERE year = $1 AND month = $2 AND cycle = $3 AND status = $4
  `, period.Year, period.Month, period.Cycle, status)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.Run{}, store.ErrNotFound
	}
	return run, err
}

func (s *Store) InsertPayrollRun(ctx context.Context, run payroll.Run) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO payroll_runs (id, year, month, cycle, status, total_net, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, run.ID, run.Period.Year, run.Period.Month, run.Period.Cycle, run.Status, run.TotalNet, run.CreatedAt)
	return err
}

func (s *Store) UpdatePayrollRun(ctx context.Context, run payroll.Run) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_runs SET status = $2, total_net = $3 WHERE id = $1
  `, run.ID, run.Status, run.TotalNet)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePayrollRun(ctx context.Context, id string) error {
	// Items go with the run via ON DELETE CASCADE.
	tag, err := s.DB.Exec(ctx, "DELETE FROM payroll_runs WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListPayrollItems(ctx context.Context, runID string) ([]payroll.Item, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, run_id, employee_id, basic_salary, housing_allowances, other_allowances,
           absence_deduction, leave_deduction, permission_deduction,
           insurance_employee, insurance_employer, net_salary
    FROM payroll_items
    WHERE run_id = $1
  `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.Item
	for rows.Next() {
		var item payroll.Item
		if err := rows.Scan(&item.ID, &item.RunID, &item.EmployeeID, &item.BasicSalary,
			&item.HousingAllowances, &item.OtherAllowances, &item.AbsenceDeduction,
			&item.LeaveDeduction, &item.PermissionDeduction, &item.InsuranceEmployee,
			&item.InsuranceEmployer, &item.NetSalary); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) InsertPayrollItems(ctx context.Context, items []payroll.Item) error {
	for _, item := range items {
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO payroll_items (id, run_id, employee_id, basic_salary, housing_allowances,
                                 other_allowances, absence_deduction, leave_deduction,
                                 permission_deduction, insurance_employee, insurance_employer, net_salary)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    `, item.ID, item.RunID, item.EmployeeID, item.BasicSalary, item.HousingAllowances,
			item.OtherAllowances, item.AbsenceDeduction, item.LeaveDeduction,
			item.PermissionDeduction, item.InsuranceEmployee, item.InsuranceEmployer, item.NetSalary); err != nil {
			return err
		}
	}
	return nil
}

func scanRun(row pgx.Row) (payroll.Run, error) {
	var run payroll.Run
	if err := row.Scan(&run.ID, &run.Period.Year, &run.Period.Month, &run.Period.Cycle,
		&run.Status, &run.TotalNet, &run.CreatedAt); err != nil {
		return payroll.Run{}, err
	}
	return run, nil
}
