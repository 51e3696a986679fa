package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mawared/internal/domain/calendar"
	"mawared/internal/domain/leave"
	"mawared/internal/store"
)

const leaveColumns = `
  id, employee_id, category, start_date, end_date, days, hours, final_amount,
  reason, status, hours_consumed, history, created_at`

func (s *Store) ListLeaveRequests(ctx context.Context, filter leave.Filter) ([]leave.Request, error) {
	query := "SELECT" + leaveColumns + " FROM leave_requests WHERE 1=1"
	var args []any

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, filter.Statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND end_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND start_date <= $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Request
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *Store) GetLeaveRequest(ctx context.Context, id string) (leave.Request, error) {
	row := s.DB.QueryRow(ctx, "SELECT"+leaveColumns+" FROM leave_requests WHERE id = $1", id)
	req, err := scanLeaveRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.Request{}, store.ErrNotFound
	}
	return req, err
}

func (s *Store) InsertLeaveRequest(ctx context.Context, req leave.Request) error {
	history, err := json.Marshal(req.History)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO leave_requests (id, employee_id, category, start_date, end_date, days, hours,
                                final_amount, reason, status, hours_consumed, history, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
  `, req.ID, req.EmployeeID, req.Category, req.StartDate, req.EndDate, req.Days, req.Hours,
		req.FinalAmount, req.Reason, req.Status, req.HoursConsumed, history, req.CreatedAt)
	return err
}

func (s *Store) UpdateLeaveRequest(ctx context.Context, req leave.Request, expectStatus string) error {
	history, err := json.Marshal(req.History)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE leave_requests
    SET days = $2, hours = $3, final_amount = $4, status = $5, hours_consumed = $6, history = $7
    WHERE id = $1 AND status = $8
  `, req.ID, req.Days, req.Hours, req.FinalAmount, req.Status, req.HoursConsumed, history, expectStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM leave_requests WHERE id = $1)", req.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrStatusConflict
	}
	return nil
}

func scanLeaveRequest(row pgx.Row) (leave.Request, error) {
	var req leave.Request
	var history []byte
	if err := row.Scan(&req.ID, &req.EmployeeID, &req.Category, &req.StartDate, &req.EndDate,
		&req.Days, &req.Hours, &req.FinalAmount, &req.Reason, &req.Status,
		&req.HoursConsumed, &history, &req.CreatedAt); err != nil {
		return leave.Request{}, err
	}
	if err := json.Unmarshal(history, &req.History); err != nil {
		return leave.Request{}, err
	}
	return req, nil
}

// ---- holidays ----

func (s *Store) ListHolidays(ctx context.Context) ([]calendar.Holiday, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, date, name FROM holidays ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) InsertHoliday(ctx context.Context, h calendar.Holiday) error {
	_, err := s.DB.Exec(ctx, "INSERT INTO holidays (id, date, name) VALUES ($1,$2,$3)", h.ID, h.Date, h.Name)
	return err
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM holidays WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
