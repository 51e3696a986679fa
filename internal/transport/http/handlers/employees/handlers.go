package employeeshandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mawared/internal/domain/auth"
	"mawared/internal/domain/employee"
	"mawared/internal/store"
	"mawared/internal/transport/http/api"
	"mawared/internal/transport/http/middleware"
)

type Handler struct {
	Service *employee.Service
}

func NewHandler(service *employee.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleManager)).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleHR)).Put("/{employeeID}", h.handleUpdate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, staff, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	// Employees may only read their own record.
	if !auth.AtLeast(user.Role, auth.RoleManager) && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Service.Get(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employee.Employee
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "employee_invalid", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload employee.Employee
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "employeeID")

	emp, err := h.Service.Update(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, store.ErrVersionConflict):
			api.Fail(w, http.StatusConflict, "version_conflict", "employee was modified concurrently", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusBadRequest, "employee_invalid", err.Error(), middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}
