package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"mawared/internal/domain/attendance"
	"mawared/internal/domain/auth"
	"mawared/internal/domain/notifications"
	"mawared/internal/domain/policy"
	"mawared/internal/store"
)

// ---- attendance ----

func (s *Store) ListAttendance(ctx context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	query := `
    SELECT id, employee_id, date, clock_in, clock_out, status, source, created_at
    FROM attendance_records WHERE 1=1`
	var args []any

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.ClockIn, &rec.ClockOut,
			&rec.Status, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) InsertAttendance(ctx context.Context, rec attendance.Record) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO attendance_records (id, employee_id, date, clock_in, clock_out, status, source, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, rec.ID, rec.EmployeeID, rec.Date, rec.ClockIn, rec.ClockOut, rec.Status, rec.Source, rec.CreatedAt)
	return err
}

// ---- policy ----

// The policies table holds a single row pinned to id 1.

func (s *Store) GetPolicy(ctx context.Context) (policy.Policy, error) {
	var p policy.Policy
	err := s.DB.QueryRow(ctx, "SELECT monthly_permission_hours, hours_per_day FROM policies WHERE id = 1").
		Scan(&p.MonthlyPermissionHours, &p.HoursPerDay)
	if errors.Is(err, pgx.ErrNoRows) {
		return policy.Default(), nil
	}
	return p, err
}

func (s *Store) UpdatePolicy(ctx context.Context, p policy.Policy) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO policies (id, monthly_permission_hours, hours_per_day)
    VALUES (1, $1, $2)
    ON CONFLICT (id) DO UPDATE SET monthly_permission_hours = $1, hours_per_day = $2
  `, p.MonthlyPermissionHours, p.HoursPerDay)
	return err
}

// ---- notifications ----

func (s *Store) InsertNotification(ctx context.Context, n notifications.Notification) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (id, employee_id, type, message, read, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, n.ID, n.EmployeeID, n.Type, n.Message, n.Read, n.CreatedAt)
	return err
}

func (s *Store) ListNotifications(ctx context.Context, employeeID string) ([]notifications.Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, type, message, read, created_at
    FROM notifications WHERE employee_id = $1 ORDER BY created_at
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notifications.Notification
	for rows.Next() {
		var n notifications.Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE notifications SET read = TRUE WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ---- users ----

func (s *Store) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	var u auth.User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, password_hash, role, employee_id
    FROM users WHERE lower(email) = $1
  `, strings.ToLower(email)).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.EmployeeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, store.ErrNotFound
	}
	return u, err
}

func (s *Store) InsertUser(ctx context.Context, u auth.User) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO users (id, email, password_hash, role, employee_id)
    VALUES ($1,$2,$3,$4,$5)
  `, u.ID, u.Email, u.PasswordHash, u.Role, u.EmployeeID)
	return err
}

// ---- idempotency ----

func (s *Store) GetIdempotencyRecord(ctx context.Context, userID, endpoint, key string) (store.IdempotencyRecord, error) {
	var rec store.IdempotencyRecord
	err := s.DB.QueryRow(ctx, `
    SELECT request_hash, status, response FROM idempotency_keys
    WHERE user_id = $1 AND endpoint = $2 AND key = $3
  `, userID, endpoint, key).Scan(&rec.RequestHash, &rec.Status, &rec.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.IdempotencyRecord{}, store.ErrNotFound
	}
	return rec, err
}

func (s *Store) PutIdempotencyRecord(ctx context.Context, userID, endpoint, key string, rec store.IdempotencyRecord) error {
	// The conditional upsert refuses to overwrite a record made by a
	// different payload under the same key.
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO idempotency_keys (user_id, endpoint, key, request_hash, status, response)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (user_id, endpoint, key)
    DO UPDATE SET status = EXCLUDED.status, response = EXCLUDED.response
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, userID, endpoint, key, rec.RequestHash, rec.Status, rec.Body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrIdempotencyConflict
	}
	return nil
}
