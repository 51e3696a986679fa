package leave

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCategory = errors.New("unknown leave category")
	ErrInvalidHours    = errors.New("short permission must be 1 or 2 hours")
)

// ValidationError reports a business-rule rejection at submission time.
// It carries enough context (category, limit, current usage) for a caller
// to render an actionable message.
type ValidationError struct {
	Category  string  `json:"category"`
	Rule      string  `json:"rule"`
	Limit     float64 `json:"limit,omitempty"`
	Current   float64 `json:"current,omitempty"`
	Requested float64 `json:"requested,omitempty"`
	Reason    string  `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("leave validation failed (%s/%s): %s", e.Category, e.Rule, e.Reason)
}

const (
	RuleEmptyRange          = "empty_range"
	RuleInsufficientBalance = "insufficient_balance"
	RuleQuotaExceeded       = "quota_exceeded"
	RuleAdvanceNotice       = "advance_notice"
	RuleMinTenure           = "min_tenure"
	RuleAlreadyTaken        = "already_taken"
	RuleMaxDuration         = "max_duration"
	RuleMaxHours            = "max_hours"
)

// InvalidTransitionError reports a transition attempt that is not legal
// from the request's current status, or made by an actor lacking
// authority. The request is left unmodified.
type InvalidTransitionError struct {
	RequestID string `json:"requestId"`
	From      string `json:"from"`
	Action    Action `json:"action"`
	Role      string `json:"role"`
	Reason    string `json:"reason"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s from %s by %s: %s", e.Action, e.From, e.Role, e.Reason)
}

// AsValidation unwraps err as a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// AsInvalidTransition unwraps err as an InvalidTransitionError if it is one.
func AsInvalidTransition(err error) (*InvalidTransitionError, bool) {
	var terr *InvalidTransitionError
	if errors.As(err, &terr) {
		return terr, true
	}
	return nil, false
}
