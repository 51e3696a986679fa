package attendancehandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mawared/internal/domain/attendance"
	"mawared/internal/domain/auth"
	"mawared/internal/transport/http/api"
	"mawared/internal/transport/http/middleware"
	"mawared/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/", h.handleRecord)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	filter := attendance.Filter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := shared.ParseDate(from); err == nil {
			filter.From = t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := shared.ParseDate(to); err == nil {
			filter.To = t
		}
	}
	if !auth.AtLeast(user.Role, auth.RoleManager) {
		filter.EmployeeID = user.EmployeeID
	}

	records, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var payload attendance.Record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Service.Record(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "attendance_invalid", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, rec, middleware.GetRequestID(r.Context()))
}
