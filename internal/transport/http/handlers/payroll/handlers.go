package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mawared/internal/domain/auth"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/payroll"
	"mawared/internal/platform/metrics"
	"mawared/internal/platform/pdf"
	"mawared/internal/store"
	"mawared/internal/transport/http/api"
	"mawared/internal/transport/http/middleware"
)

type Handler struct {
	Service   *payroll.Service
	Employees *employee.Service
	Metrics   *metrics.Collector
}

func NewHandler(service *payroll.Service, employees *employee.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Employees: employees, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/runs", h.handleListRuns)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/runs", h.handleGenerateDraft)
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/runs/{runID}", h.handleGetRun)
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/runs/{runID}/items", h.handleListItems)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/runs/{runID}/finalize", h.handleFinalize)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/runs/{runID}/payslip/{employeeID}", h.handlePayslip)
	})
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Service.ListRuns(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list runs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

type generatePayload struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Cycle string `json:"cycle"`
}

func (h *Handler) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	run, items, err := h.Service.GenerateDraft(r.Context(), payroll.Period{
		Year:  payload.Year,
		Month: payload.Month,
		Cycle: payload.Cycle,
	})
	if err != nil {
		if errors.Is(err, payroll.ErrInvalidPeriod) {
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payroll_draft_failed", "failed to generate draft", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Metrics != nil {
		h.Metrics.PayrollDraftRun()
	}
	api.Created(w, map[string]any{"run": run, "items": items}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payroll_get_failed", "failed to load run", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Items(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_items_failed", "failed to list items", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	run, err := h.Service.FinalizeRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", middleware.GetRequestID(r.Context()))
		case errors.Is(err, payroll.ErrFinalizeInvalidState):
			api.Fail(w, http.StatusConflict, "invalid_state", "only draft runs can be finalized", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "payroll_finalize_failed", "failed to finalize run", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	runID := chi.URLParam(r, "runID")
	employeeID := chi.URLParam(r, "employeeID")

	if !auth.AtLeast(user.Role, auth.RoleHR) && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	run, err := h.Service.GetRun(r.Context(), runID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "payroll run not found", middleware.GetRequestID(r.Context()))
		return
	}
	items, err := h.Service.Items(r.Context(), runID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_items_failed", "failed to list items", middleware.GetRequestID(r.Context()))
		return
	}

	var item *payroll.Item
	for i := range items {
		if items[i].EmployeeID == employeeID {
			item = &items[i]
			break
		}
	}
	if item == nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no payslip for employee in this run", middleware.GetRequestID(r.Context()))
		return
	}

	emp, err := h.Employees.Get(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}

	data, err := pdf.Payslip(emp, run, *item)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%04d-%02d.pdf", run.Period.Year, run.Period.Month))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Warn("payslip write failed", "runId", runID, "employeeId", employeeID, "err", err)
	}
}
