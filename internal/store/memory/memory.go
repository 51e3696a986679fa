// Package memory is the in-memory Store backend, used by tests and by
// deployments running without external persistence.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"mawared/internal/domain/attendance"
	"mawared/internal/domain/auth"
	"mawared/internal/domain/calendar"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/leave"
	"mawared/internal/domain/notifications"
	"mawared/internal/domain/payroll"
	"mawared/internal/domain/policy"
	"mawared/internal/store"
)

type Store struct {
	mu            sync.RWMutex
	employees     map[string]employee.Employee
	users         map[string]auth.User // keyed by lowercased email
	requests      map[string]leave.Request
	holidays      map[string]calendar.Holiday
	attendance    []attendance.Record
	runs          map[string]payroll.Run
	items         map[string][]payroll.Item // keyed by run ID
	notifications []notifications.Notification
	policy        policy.Policy
	idempotency   map[string]store.IdempotencyRecord
}

func New() *Store {
	return &Store{
		employees:   make(map[string]employee.Employee),
		users:       make(map[string]auth.User),
		requests:    make(map[string]leave.Request),
		holidays:    make(map[string]calendar.Holiday),
		runs:        make(map[string]payroll.Run),
		items:       make(map[string][]payroll.Item),
		policy:      policy.Default(),
		idempotency: make(map[string]store.IdempotencyRecord),
	}
}

// ---- employees ----

func (s *Store) ListEmployees(_ context.Context) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]employee.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return employee.Employee{}, store.ErrNotFound
	}
	return emp, nil
}

func (s *Store) InsertEmployee(_ context.Context, emp employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = emp
	return nil
}

func (s *Store) UpdateEmployee(_ context.Context, emp employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.employees[emp.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != emp.Version {
		return store.ErrVersionConflict
	}
	emp.Version++
	s.employees[emp.ID] = emp
	return nil
}

// ---- users ----

func (s *Store) GetUserByEmail(_ context.Context, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return auth.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *Store) InsertUser(_ context.Context, u auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(u.Email)] = u
	return nil
}

// ---- leave requests ----

func (s *Store) ListLeaveRequests(_ context.Context, filter leave.Filter) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []leave.Request
	for _, req := range s.requests {
		if !matches(req, filter) {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func matches(req leave.Request, filter leave.Filter) bool {
	if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
		return false
	}
	if filter.Category != "" && req.Category != filter.Category {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if req.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !filter.From.IsZero() && req.EndDate.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && req.StartDate.After(filter.To) {
		return false
	}
	return true
}

func (s *Store) GetLeaveRequest(_ context.Context, id string) (leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return leave.Request{}, store.ErrNotFound
	}
	return req, nil
}

func (s *Store) InsertLeaveRequest(_ context.Context, req leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
	return nil
}

func (s *Store) UpdateLeaveRequest(_ context.Context, req leave.Request, expectStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.requests[req.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Status != expectStatus {
		return store.ErrStatusConflict
	}
	s.requests[req.ID] = req
	return nil
}

// ---- holidays ----

func (s *Store) ListHolidays(_ context.Context) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]calendar.Holiday, 0, len(s.holidays))
	for _, h := range s.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) InsertHoliday(_ context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays[h.ID] = h
	return nil
}

func (s *Store) DeleteHoliday(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.holidays[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.holidays, id)
	return nil
}

// ---- attendance ----

func (s *Store) ListAttendance(_ context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Record
	for _, rec := range s.attendance {
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && rec.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && rec.Date.After(filter.To) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) InsertAttendance(_ context.Context, rec attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance = append(s.attendance, rec)
	return nil
}

// ---- payroll ----

func (s *Store) ListPayrollRuns(_ context.Context) ([]payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]payroll.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetPayrollRun(_ context.Context, id string) (payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return payroll.Run{}, store.ErrNotFound
	}
	return run, nil
}

func (s *Store) FindPayrollRun(_ context.Context, period payroll.Period, status string) (payroll.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, run := range s.runs {
		if run.Period == period && run.Status == status {
			return run, nil
		}
	}
	return payroll.Run{}, store.ErrNotFound
}

func (s *Store) InsertPayrollRun(_ context.Context, run payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *Store) UpdatePayrollRun(_ context.Context, run payroll.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return store.ErrNotFound
	}
	s.runs[run.ID] = run
	return nil
}

func (s *Store) DeletePayrollRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.runs, id)
	delete(s.items, id)
	return nil
}

func (s *Store) ListPayrollItems(_ context.Context, runID string) ([]payroll.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.items[runID]
	out := make([]payroll.Item, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) InsertPayrollItems(_ context.Context, items []payroll.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.items[item.RunID] = append(s.items[item.RunID], item)
	}
	return nil
}

// ---- policy ----

func (s *Store) GetPolicy(_ context.Context) (policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy, nil
}

func (s *Store) UpdatePolicy(_ context.Context, p policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
	return nil
}

// ---- notifications ----

func (s *Store) InsertNotification(_ context.Context, n notifications.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *Store) ListNotifications(_ context.Context, employeeID string) ([]notifications.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []notifications.Notification
	for _, n := range s.notifications {
		if n.EmployeeID == employeeID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

// ---- idempotency ----

func idempotencyKey(userID, endpoint, key string) string {
	return userID + "\x00" + endpoint + "\x00" + key
}

func (s *Store) GetIdempotencyRecord(_ context.Context, userID, endpoint, key string) (store.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.idempotency[idempotencyKey(userID, endpoint, key)]
	if !ok {
		return store.IdempotencyRecord{}, store.ErrNotFound
	}
	return rec, nil
}

func (s *Store) PutIdempotencyRecord(_ context.Context, userID, endpoint, key string, rec store.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := idempotencyKey(userID, endpoint, key)
	if existing, ok := s.idempotency[k]; ok && existing.RequestHash != rec.RequestHash {
		return store.ErrIdempotencyConflict
	}
	s.idempotency[k] = rec
	return nil
}
