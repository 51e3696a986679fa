package leavehandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mawared/internal/domain/auth"
	"mawared/internal/domain/leave"
	"mawared/internal/domain/notifications"
	"mawared/internal/platform/metrics"
	"mawared/internal/store"
	"mawared/internal/transport/http/api"
	"mawared/internal/transport/http/middleware"
	"mawared/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Notify  *notifications.Service
	Metrics *metrics.Collector
}

func NewHandler(service *leave.Service, notify *notifications.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Notify: notify, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/holidays", h.handleCreateHoliday)
		r.With(middleware.RequireRole(auth.RoleHR)).Delete("/holidays/{holidayID}", h.handleDeleteHoliday)

		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/preview", h.handlePreview)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/balances/{employeeID}", h.handleBalances)

		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/requests", h.handleListRequests)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/requests/{requestID}", h.handleGetRequest)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Post("/requests", h.handleSubmit)
		r.With(middleware.RequireRole(auth.RoleManager)).Post("/requests/{requestID}/approve", h.handleManagerApprove)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/requests/{requestID}/hr-approve", h.handleHRApprove)
		r.With(middleware.RequireRole(auth.RoleManager)).Post("/requests/{requestID}/reject", h.handleReject)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Post("/requests/{requestID}/resume", h.handleResume)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/requests/{requestID}/finalize", h.handleFinalize)
	})
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Service.Holidays(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_list_failed", "failed to list holidays", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, holidays, middleware.GetRequestID(r.Context()))
}

type holidayPayload struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	date, err := shared.ParseDate(payload.Date)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid date", middleware.GetRequestID(r.Context()))
		return
	}

	holiday, err := h.Service.CreateHoliday(r.Context(), date, payload.Name)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "holiday_invalid", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, holiday, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteHoliday(r.Context(), chi.URLParam(r, "holidayID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "holiday not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "holiday_delete_failed", "failed to delete holiday", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" || !auth.AtLeast(user.Role, auth.RoleManager) {
		employeeID = user.EmployeeID
	}

	start, err := shared.ParseDate(r.URL.Query().Get("startDate"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid start date", middleware.GetRequestID(r.Context()))
		return
	}
	end, err := shared.ParseDate(r.URL.Query().Get("endDate"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid end date", middleware.GetRequestID(r.Context()))
		return
	}

	days, err := h.Service.PreviewDays(r.Context(), employeeID, start, end)
	if err != nil {
		h.failDomain(w, r, err, "preview_failed", "failed to preview days")
		return
	}
	api.Success(w, map[string]int{"billableDays": days}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if !auth.AtLeast(user.Role, auth.RoleManager) && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	balances, err := h.Service.Balances(r.Context(), employeeID)
	if err != nil {
		h.failDomain(w, r, err, "balances_failed", "failed to load balances")
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	filter := leave.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Category:   r.URL.Query().Get("category"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Statuses = []string{status}
	}
	// Plain employees only ever see their own requests.
	if !auth.AtLeast(user.Role, auth.RoleManager) {
		filter.EmployeeID = user.EmployeeID
	}

	requests, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list requests", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	req, err := h.Service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		h.failDomain(w, r, err, "leave_get_failed", "failed to load request")
		return
	}
	if !auth.AtLeast(user.Role, auth.RoleManager) && req.EmployeeID != user.EmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

type submitPayload struct {
	EmployeeID string  `json:"employeeId"`
	Category   string  `json:"category"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	Hours      float64 `json:"hours"`
	Reason     string  `json:"reason"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	// Non-HR users submit for themselves regardless of the payload.
	if !auth.AtLeast(user.Role, auth.RoleHR) || payload.EmployeeID == "" {
		payload.EmployeeID = user.EmployeeID
	}

	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid start date", middleware.GetRequestID(r.Context()))
		return
	}
	end := start
	if payload.EndDate != "" {
		if end, err = shared.ParseDate(payload.EndDate); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid end date", middleware.GetRequestID(r.Context()))
			return
		}
	}

	req, events, err := h.Service.Submit(r.Context(), leave.SubmitInput{
		EmployeeID: payload.EmployeeID,
		Category:   payload.Category,
		StartDate:  start,
		EndDate:    end,
		Hours:      payload.Hours,
		Reason:     payload.Reason,
	})
	if err != nil {
		h.failDomain(w, r, err, "leave_submit_failed", "failed to submit request")
		return
	}

	h.Notify.Dispatch(r.Context(), events)
	api.Created(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleManagerApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, leave.ActionManagerApprove)
}

func (h *Handler) handleHRApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, leave.ActionHRApprove)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, leave.ActionReject)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, leave.ActionResume)
}

type transitionPayload struct {
	Note string `json:"note"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action leave.Action) {
	user, _ := middleware.GetUser(r.Context())
	actor := leave.Actor{UserID: user.UserID, EmployeeID: user.EmployeeID, Role: user.Role}
	requestID := chi.URLParam(r, "requestID")

	var payload transitionPayload
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	var (
		req    leave.Request
		events []leave.Event
		err    error
	)
	switch action {
	case leave.ActionManagerApprove:
		req, events, err = h.Service.ManagerApprove(r.Context(), requestID, actor, payload.Note)
	case leave.ActionHRApprove:
		req, events, err = h.Service.HRApprove(r.Context(), requestID, actor, payload.Note)
	case leave.ActionReject:
		req, events, err = h.Service.Reject(r.Context(), requestID, actor, payload.Note)
	case leave.ActionResume:
		req, events, err = h.Service.Resume(r.Context(), requestID, actor, payload.Note)
	}
	if err != nil {
		h.failDomain(w, r, err, "leave_transition_failed", "failed to apply transition")
		return
	}

	if h.Metrics != nil {
		h.Metrics.LeaveTransition()
	}
	h.Notify.Dispatch(r.Context(), events)
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	actor := leave.Actor{UserID: user.UserID, EmployeeID: user.EmployeeID, Role: user.Role}

	var input leave.FinalizeInput
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&input)
	}

	req, events, err := h.Service.Finalize(r.Context(), chi.URLParam(r, "requestID"), actor, input)
	if err != nil {
		h.failDomain(w, r, err, "leave_finalize_failed", "failed to finalize request")
		return
	}

	if h.Metrics != nil {
		h.Metrics.LeaveTransition()
	}
	h.Notify.Dispatch(r.Context(), events)
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

// failDomain maps domain errors to transport responses. Validation and
// transition failures carry their structured payload through so clients
// can show the violated rule.
func (h *Handler) failDomain(w http.ResponseWriter, r *http.Request, err error, code, fallback string) {
	requestID := middleware.GetRequestID(r.Context())
	if verr, ok := leave.AsValidation(err); ok {
		api.FailDetails(w, http.StatusUnprocessableEntity, "validation_failed", verr.Error(), verr, requestID)
		return
	}
	if terr, ok := leave.AsInvalidTransition(err); ok {
		api.FailDetails(w, http.StatusConflict, "invalid_transition", terr.Error(), terr, requestID)
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
	case errors.Is(err, store.ErrStatusConflict):
		api.Fail(w, http.StatusConflict, "status_conflict", "request was modified concurrently", requestID)
	case errors.Is(err, store.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "employee was modified concurrently", requestID)
	case errors.Is(err, leave.ErrUnknownCategory):
		api.Fail(w, http.StatusBadRequest, "unknown_category", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, fallback, requestID)
	}
}
