package leave

import (
	"time"

	"mawared/internal/domain/employee"
)

// Request statuses. A request walks Pending → ManagerApproved →
// HRApproved → Resumed → HRFinalized; short permissions skip HRApproved.
// Rejected is reachable from any state before Resumed.
const (
	StatusPending         = "pending"
	StatusManagerApproved = "manager_approved"
	StatusHRApproved      = "hr_approved"
	StatusResumed         = "resumed"
	StatusHRFinalized     = "hr_finalized"
	StatusRejected        = "rejected"
)

const (
	// MaxPermissionHours caps a single short-permission request.
	MaxPermissionHours = 2
	// HajjMinTenureYears is the minimum service before the one-time
	// long-service leave becomes available.
	HajjMinTenureYears = 2
	// HajjMaxDays caps the one-time long-service leave duration.
	HajjMaxDays = 21
)

type HistoryEntry struct {
	ActorID string    `json:"actorId"`
	Role    string    `json:"role"`
	Status  string    `json:"status"`
	Note    string    `json:"note,omitempty"`
	At      time.Time `json:"at"`
}

type Request struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Category   string    `json:"category"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	// Days is the computed billable day count for day-based categories;
	// Hours is the requested duration for short permissions.
	Days  float64 `json:"days,omitempty"`
	Hours float64 `json:"hours,omitempty"`
	// FinalAmount is the HR-confirmed day/hour count set at finalization.
	FinalAmount float64 `json:"finalAmount,omitempty"`
	Reason      string  `json:"reason"`
	Status      string  `json:"status"`
	// HoursConsumed marks a short permission whose hours already count
	// against the monthly quota (set at manager approval, not at
	// finalization).
	HoursConsumed bool `json:"hoursConsumed,omitempty"`
	// History is append-only; Status always equals the last entry's status.
	History   []HistoryEntry `json:"history"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Amount is the request's balance-affecting quantity in its native unit.
func (r Request) Amount() float64 {
	if r.Category == employee.CategoryShortPermission {
		return r.Hours
	}
	return r.Days
}

// InFlight reports whether the request still reserves balance: neither
// finalized nor rejected.
func (r Request) InFlight() bool {
	return r.Status != StatusHRFinalized && r.Status != StatusRejected
}

type Filter struct {
	EmployeeID string
	Category   string
	Statuses   []string
	From       time.Time
	To         time.Time
}

// Event is emitted by transitions for the caller to dispatch; the state
// machine itself never talks to notification channels.
type Event struct {
	Type       string    `json:"type"`
	EmployeeID string    `json:"employeeId"`
	RequestID  string    `json:"requestId"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

const (
	EventSubmitted       = "leave.submitted"
	EventManagerApproved = "leave.manager_approved"
	EventHRApproved      = "leave.hr_approved"
	EventRejected        = "leave.rejected"
	EventResumed         = "leave.resumed"
	EventFinalized       = "leave.finalized"
)
