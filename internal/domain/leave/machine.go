package leave

import (
	"mawared/internal/domain/auth"
	"mawared/internal/domain/employee"
)

type Action string

const (
	ActionManagerApprove Action = "manager_approve"
	ActionHRApprove      Action = "hr_approve"
	ActionReject         Action = "reject"
	ActionResume         Action = "resume"
	ActionFinalize       Action = "finalize"
)

// Actor identifies who attempts a transition.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       string
}

// categoryClass partitions categories by approval path: hourly short
// permissions skip HR approval, day categories do not.
type categoryClass int

const (
	classAny categoryClass = iota
	classDay
	classHourly
)

func classOf(category string) categoryClass {
	if category == employee.CategoryShortPermission {
		return classHourly
	}
	return classDay
}

type transition struct {
	from    string
	action  Action
	to      string
	class   categoryClass
	minRole string // empty means the requesting employee themself
}

// transitions is the complete legal transition table. Anything not listed
// here is an invalid transition.
var transitions = []transition{
	{from: StatusPending, action: ActionManagerApprove, to: StatusManagerApproved, class: classAny, minRole: auth.RoleManager},
	{from: StatusManagerApproved, action: ActionHRApprove, to: StatusHRApproved, class: classDay, minRole: auth.RoleHR},
	{from: StatusHRApproved, action: ActionResume, to: StatusResumed, class: classDay},
	{from: StatusManagerApproved, action: ActionResume, to: StatusResumed, class: classHourly},
	{from: StatusResumed, action: ActionFinalize, to: StatusHRFinalized, class: classAny, minRole: auth.RoleHR},
	{from: StatusPending, action: ActionReject, to: StatusRejected, class: classAny, minRole: auth.RoleManager},
	{from: StatusManagerApproved, action: ActionReject, to: StatusRejected, class: classAny, minRole: auth.RoleManager},
	{from: StatusHRApproved, action: ActionReject, to: StatusRejected, class: classAny, minRole: auth.RoleManager},
}

// Effect names a balance/status side effect bound to a transition. The
// table below makes the deliberate asymmetry visible: short-permission
// hours are consumed at manager approval, while day balances commit only
// at finalization.
type Effect int

const (
	EffectNone Effect = iota
	// EffectConsumeHours marks the request's hours against the monthly
	// quota immediately (eager, at manager sign-off).
	EffectConsumeHours
	// EffectRefundHours releases eagerly consumed hours on rejection.
	EffectRefundHours
	// EffectEmployeeResumed flips the employee back to active and alerts HR.
	EffectEmployeeResumed
	// EffectCommitBalance increments the category's used counter by the
	// finalized amount.
	EffectCommitBalance
	// EffectSetHajjFlag marks the one-time long-service leave as taken.
	EffectSetHajjFlag
)

type effectRule struct {
	from     string
	to       string
	category string // empty matches any category
	effect   Effect
}

var effectRules = []effectRule{
	{StatusPending, StatusManagerApproved, employee.CategoryShortPermission, EffectConsumeHours},
	{StatusManagerApproved, StatusRejected, employee.CategoryShortPermission, EffectRefundHours},
	{StatusHRApproved, StatusResumed, "", EffectEmployeeResumed},
	{StatusManagerApproved, StatusResumed, "", EffectEmployeeResumed},
	{StatusResumed, StatusHRFinalized, employee.CategoryHajj, EffectSetHajjFlag},
	{StatusResumed, StatusHRFinalized, employee.CategoryAnnual, EffectCommitBalance},
	{StatusResumed, StatusHRFinalized, employee.CategorySick, EffectCommitBalance},
	{StatusResumed, StatusHRFinalized, employee.CategoryEmergency, EffectCommitBalance},
	// Short-permission finalization deliberately has no balance effect:
	// hours were consumed at manager approval.
}

// Next resolves the target status for (request, action, actor) or returns
// an InvalidTransitionError. It does not mutate anything.
func Next(req Request, action Action, actor Actor) (string, error) {
	class := classOf(req.Category)
	for _, t := range transitions {
		if t.from != req.Status || t.action != action {
			continue
		}
		if t.class != classAny && t.class != class {
			continue
		}
		if t.minRole == "" {
			if actor.EmployeeID != req.EmployeeID {
				return "", &InvalidTransitionError{
					RequestID: req.ID, From: req.Status, Action: action, Role: actor.Role,
					Reason: "only the requesting employee may confirm resumption",
				}
			}
			return t.to, nil
		}
		if !auth.AtLeast(actor.Role, t.minRole) {
			return "", &InvalidTransitionError{
				RequestID: req.ID, From: req.Status, Action: action, Role: actor.Role,
				Reason: "role lacks authority for this transition",
			}
		}
		return t.to, nil
	}
	return "", &InvalidTransitionError{
		RequestID: req.ID, From: req.Status, Action: action, Role: actor.Role,
		Reason: "no such transition from current status",
	}
}

// Effects returns the side effects bound to a (from, to, category) edge.
func Effects(from, to, category string) []Effect {
	var out []Effect
	for _, rule := range effectRules {
		if rule.from != from || rule.to != to {
			continue
		}
		if rule.category != "" && rule.category != category {
			continue
		}
		out = append(out, rule.effect)
	}
	return out
}
