package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mawared/internal/domain/calendar"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/policy"
	"mawared/internal/store"
)

type Service struct {
	store     StoreAPI
	employees employee.StoreAPI
	policies  policy.StoreAPI
	now       func() time.Time
}

func NewService(store StoreAPI, employees employee.StoreAPI, policies policy.StoreAPI) *Service {
	return &Service{store: store, employees: employees, policies: policies, now: time.Now}
}

// WithClock overrides the service clock; tests use this to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Request, error) {
	return s.store.ListLeaveRequests(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.store.GetLeaveRequest(ctx, id)
}

func (s *Service) Holidays(ctx context.Context) ([]calendar.Holiday, error) {
	return s.store.ListHolidays(ctx)
}

func (s *Service) CreateHoliday(ctx context.Context, date time.Time, name string) (calendar.Holiday, error) {
	if strings.TrimSpace(name) == "" {
		return calendar.Holiday{}, fmt.Errorf("holiday name is required")
	}
	h := calendar.Holiday{ID: uuid.NewString(), Date: date, Name: name}
	if err := s.store.InsertHoliday(ctx, h); err != nil {
		return calendar.Holiday{}, err
	}
	return h, nil
}

func (s *Service) DeleteHoliday(ctx context.Context, id string) error {
	return s.store.DeleteHoliday(ctx, id)
}

// PreviewDays runs the billable-day count for a prospective request, the
// same computation submission will apply.
func (s *Service) PreviewDays(ctx context.Context, employeeID string, start, end time.Time) (int, error) {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	holidays, err := s.holidaySet(ctx)
	if err != nil {
		return 0, err
	}
	return calendar.BillableDays(start, end, emp.WorkWeek == employee.WorkWeekFiveDay, holidays), nil
}

// Balances returns the recomputed per-category read model:
// available = entitlement − used − pending.
func (s *Service) Balances(ctx context.Context, employeeID string) ([]BalanceView, error) {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	requests, err := s.store.ListLeaveRequests(ctx, Filter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	return BalanceViews(emp, requests), nil
}

type SubmitInput struct {
	EmployeeID string    `json:"employeeId"`
	Category   string    `json:"category"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Hours      float64   `json:"hours"`
	Reason     string    `json:"reason"`
}

// Submit validates the request against category rules and creates it in
// Pending. Any rule violation is returned synchronously and nothing is
// persisted.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (Request, []Event, error) {
	emp, err := s.employees.GetEmployee(ctx, input.EmployeeID)
	if err != nil {
		return Request{}, nil, err
	}

	req := Request{
		ID:         uuid.NewString(),
		EmployeeID: input.EmployeeID,
		Category:   input.Category,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Reason:     input.Reason,
		Status:     StatusPending,
		CreatedAt:  s.now().UTC(),
	}

	switch input.Category {
	case employee.CategoryShortPermission:
		req.EndDate = input.StartDate
		req.Hours = input.Hours
		if err := s.validateShortPermission(ctx, &req); err != nil {
			return Request{}, nil, err
		}
	case employee.CategoryAnnual, employee.CategorySick, employee.CategoryEmergency:
		if err := s.validateDayRequest(ctx, emp, &req); err != nil {
			return Request{}, nil, err
		}
	case employee.CategoryHajj:
		if err := s.validateHajj(ctx, emp, &req); err != nil {
			return Request{}, nil, err
		}
	default:
		return Request{}, nil, fmt.Errorf("%w: %q", ErrUnknownCategory, input.Category)
	}

	req.History = append(req.History, HistoryEntry{
		ActorID: emp.ID,
		Role:    "employee",
		Status:  StatusPending,
		At:      req.CreatedAt,
	})

	if err := s.store.InsertLeaveRequest(ctx, req); err != nil {
		return Request{}, nil, err
	}

	events := []Event{{
		Type:       EventSubmitted,
		EmployeeID: emp.ID,
		RequestID:  req.ID,
		Message:    fmt.Sprintf("%s leave request submitted by %s %s", req.Category, emp.FirstName, emp.LastName),
		At:         req.CreatedAt,
	}}
	return req, events, nil
}

func (s *Service) validateDayRequest(ctx context.Context, emp employee.Employee, req *Request) error {
	holidays, err := s.holidaySet(ctx)
	if err != nil {
		return err
	}
	days := calendar.BillableDays(req.StartDate, req.EndDate, emp.WorkWeek == employee.WorkWeekFiveDay, holidays)
	if days <= 0 {
		return &ValidationError{
			Category: req.Category,
			Rule:     RuleEmptyRange,
			Reason:   "requested range contains no billable days",
		}
	}
	req.Days = float64(days)

	requests, err := s.store.ListLeaveRequests(ctx, Filter{EmployeeID: emp.ID, Category: req.Category})
	if err != nil {
		return err
	}
	available := Available(emp, requests, req.Category)
	if available < req.Days {
		counter, _ := emp.Balances.Counter(req.Category)
		return &ValidationError{
			Category:  req.Category,
			Rule:      RuleInsufficientBalance,
			Limit:     counter.Entitlement,
			Current:   counter.Used + PendingAmount(requests, req.Category),
			Requested: req.Days,
			Reason:    fmt.Sprintf("available balance is %.1f days", available),
		}
	}
	return nil
}

func (s *Service) validateHajj(ctx context.Context, emp employee.Employee, req *Request) error {
	if tenure := emp.TenureYears(req.StartDate); tenure < HajjMinTenureYears {
		return &ValidationError{
			Category:  req.Category,
			Rule:      RuleMinTenure,
			Limit:     HajjMinTenureYears,
			Current:   tenure,
			Requested: 0,
			Reason:    fmt.Sprintf("minimum %d years of service required", HajjMinTenureYears),
		}
	}
	if emp.Balances.HajjTaken {
		return &ValidationError{
			Category: req.Category,
			Rule:     RuleAlreadyTaken,
			Reason:   "long-service leave was already taken",
		}
	}

	holidays, err := s.holidaySet(ctx)
	if err != nil {
		return err
	}
	days := calendar.BillableDays(req.StartDate, req.EndDate, emp.WorkWeek == employee.WorkWeekFiveDay, holidays)
	if days > HajjMaxDays {
		return &ValidationError{
			Category:  req.Category,
			Rule:      RuleMaxDuration,
			Limit:     HajjMaxDays,
			Requested: float64(days),
			Reason:    fmt.Sprintf("long-service leave is capped at %d days", HajjMaxDays),
		}
	}
	req.Days = float64(days)
	return nil
}

func (s *Service) validateShortPermission(ctx context.Context, req *Request) error {
	if req.Hours != 1 && req.Hours != MaxPermissionHours {
		return &ValidationError{
			Category:  req.Category,
			Rule:      RuleMaxHours,
			Limit:     MaxPermissionHours,
			Requested: req.Hours,
			Reason:    "short permission must be 1 or 2 hours",
		}
	}

	// Minimum one full day's notice: the permission date must be strictly
	// after tomorrow.
	today := truncateToDay(s.now())
	if !truncateToDay(req.StartDate).After(today.AddDate(0, 0, 1)) {
		return &ValidationError{
			Category: req.Category,
			Rule:     RuleAdvanceNotice,
			Reason:   "short permission requires at least one full day's notice",
		}
	}

	pol, err := s.policies.GetPolicy(ctx)
	if err != nil {
		return err
	}
	requests, err := s.store.ListLeaveRequests(ctx, Filter{
		EmployeeID: req.EmployeeID,
		Category:   employee.CategoryShortPermission,
	})
	if err != nil {
		return err
	}
	used := MonthlyUsedHours(requests, req.StartDate)
	if used+req.Hours > pol.MonthlyPermissionHours {
		return &ValidationError{
			Category:  req.Category,
			Rule:      RuleQuotaExceeded,
			Limit:     pol.MonthlyPermissionHours,
			Current:   used,
			Requested: req.Hours,
			Reason:    fmt.Sprintf("monthly quota is %.0f hours, %.0f already used", pol.MonthlyPermissionHours, used),
		}
	}
	return nil
}

func (s *Service) ManagerApprove(ctx context.Context, requestID string, actor Actor, note string) (Request, []Event, error) {
	return s.apply(ctx, requestID, ActionManagerApprove, actor, note, nil)
}

func (s *Service) HRApprove(ctx context.Context, requestID string, actor Actor, note string) (Request, []Event, error) {
	return s.apply(ctx, requestID, ActionHRApprove, actor, note, nil)
}

func (s *Service) Reject(ctx context.Context, requestID string, actor Actor, note string) (Request, []Event, error) {
	return s.apply(ctx, requestID, ActionReject, actor, note, nil)
}

// Resume confirms physical return to duty; only the requesting employee
// may perform it.
func (s *Service) Resume(ctx context.Context, requestID string, actor Actor, note string) (Request, []Event, error) {
	return s.apply(ctx, requestID, ActionResume, actor, note, nil)
}

type FinalizeInput struct {
	// Amount overrides the recount when non-nil.
	Amount *float64 `json:"amount"`
	// ExcludeSecondRestDay recounts six-day-week requests with Saturday
	// treated as a rest day.
	ExcludeSecondRestDay bool   `json:"excludeSecondRestDay"`
	Note                 string `json:"note"`
}

// Finalize commits the request's effect onto the employee's balance
// counters using an explicit, possibly HR-edited, final count.
func (s *Service) Finalize(ctx context.Context, requestID string, actor Actor, input FinalizeInput) (Request, []Event, error) {
	return s.apply(ctx, requestID, ActionFinalize, actor, input.Note, &input)
}

func (s *Service) apply(ctx context.Context, requestID string, action Action, actor Actor, note string, finalize *FinalizeInput) (Request, []Event, error) {
	req, err := s.store.GetLeaveRequest(ctx, requestID)
	if err != nil {
		return Request{}, nil, err
	}

	to, err := Next(req, action, actor)
	if err != nil {
		return Request{}, nil, err
	}

	emp, err := s.employees.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return Request{}, nil, err
	}

	if action == ActionFinalize {
		amount, err := s.finalAmount(ctx, emp, req, finalize)
		if err != nil {
			return Request{}, nil, err
		}
		req.FinalAmount = amount
	}

	from := req.Status
	now := s.now().UTC()
	effects := Effects(from, to, req.Category)

	for _, effect := range effects {
		switch effect {
		case EffectConsumeHours:
			req.HoursConsumed = true
		case EffectRefundHours:
			req.HoursConsumed = false
		}
	}

	req.Status = to
	req.History = append(req.History, HistoryEntry{
		ActorID: actor.UserID,
		Role:    actor.Role,
		Status:  to,
		Note:    note,
		At:      now,
	})

	if err := s.store.UpdateLeaveRequest(ctx, req, from); err != nil {
		return Request{}, nil, err
	}

	events, err := s.applyEmployeeEffects(ctx, emp, req, effects, now)
	if err != nil {
		return Request{}, nil, err
	}

	events = append(events, s.transitionEvent(req, emp, to, now)...)
	return req, events, nil
}

func (s *Service) finalAmount(ctx context.Context, emp employee.Employee, req Request, input *FinalizeInput) (float64, error) {
	if req.Category == employee.CategoryShortPermission {
		return req.Hours, nil
	}
	if input != nil && input.Amount != nil && *input.Amount > 0 {
		return *input.Amount, nil
	}
	holidays, err := s.holidaySet(ctx)
	if err != nil {
		return 0, err
	}
	excludeSaturday := emp.WorkWeek == employee.WorkWeekFiveDay
	if input != nil && input.ExcludeSecondRestDay {
		excludeSaturday = true
	}
	return float64(calendar.BillableDays(req.StartDate, req.EndDate, excludeSaturday, holidays)), nil
}

// effectCommitRetries bounds the re-reads when a concurrent employee
// write bumps the version between the transition and the balance commit.
const effectCommitRetries = 3

// applyEmployeeEffects runs after the request transition is persisted.
// A version conflict on the employee write is retried against a fresh
// read so a concurrent update cannot strand a finalized request with an
// uncommitted balance.
func (s *Service) applyEmployeeEffects(ctx context.Context, emp employee.Employee, req Request, effects []Effect, now time.Time) ([]Event, error) {
	for attempt := 0; ; attempt++ {
		events, dirty, err := buildEmployeeEffects(&emp, req, effects, now)
		if err != nil {
			return nil, err
		}
		if !dirty {
			return events, nil
		}

		err = s.employees.UpdateEmployee(ctx, emp)
		if err == nil {
			return events, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) || attempt >= effectCommitRetries-1 {
			return nil, err
		}

		fresh, ferr := s.employees.GetEmployee(ctx, req.EmployeeID)
		if ferr != nil {
			return nil, ferr
		}
		emp = fresh
	}
}

func buildEmployeeEffects(emp *employee.Employee, req Request, effects []Effect, now time.Time) ([]Event, bool, error) {
	var events []Event
	dirty := false

	for _, effect := range effects {
		switch effect {
		case EffectCommitBalance:
			counter, ok := emp.Balances.Counter(req.Category)
			if !ok {
				return nil, false, fmt.Errorf("no balance counter for category %q", req.Category)
			}
			counter.Used += req.FinalAmount
			dirty = true
		case EffectSetHajjFlag:
			emp.Balances.HajjTaken = true
			dirty = true
		case EffectEmployeeResumed:
			if emp.Status != employee.StatusActive {
				emp.Status = employee.StatusActive
				dirty = true
			}
			events = append(events, Event{
				Type:       EventResumed,
				EmployeeID: emp.ID,
				RequestID:  req.ID,
				Message:    fmt.Sprintf("%s %s resumed duty after %s leave", emp.FirstName, emp.LastName, req.Category),
				At:         now,
			})
		}
	}
	return events, dirty, nil
}

func (s *Service) transitionEvent(req Request, emp employee.Employee, to string, now time.Time) []Event {
	var eventType, message string
	switch to {
	case StatusManagerApproved:
		eventType = EventManagerApproved
		message = fmt.Sprintf("%s leave request approved by manager", req.Category)
	case StatusHRApproved:
		eventType = EventHRApproved
		message = fmt.Sprintf("%s leave request approved by HR", req.Category)
	case StatusRejected:
		eventType = EventRejected
		message = fmt.Sprintf("%s leave request rejected", req.Category)
	case StatusHRFinalized:
		eventType = EventFinalized
		message = fmt.Sprintf("%s leave request finalized at %.1f", req.Category, req.FinalAmount)
	default:
		return nil
	}
	return []Event{{
		Type:       eventType,
		EmployeeID: emp.ID,
		RequestID:  req.ID,
		Message:    message,
		At:         now,
	}}
}

func (s *Service) holidaySet(ctx context.Context) (calendar.HolidaySet, error) {
	holidays, err := s.store.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.NewHolidaySet(holidays), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
