package settlementhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mawared/internal/domain/auth"
	"mawared/internal/domain/employee"
	"mawared/internal/domain/settlement"
	"mawared/internal/platform/metrics"
	"mawared/internal/platform/pdf"
	"mawared/internal/store"
	"mawared/internal/transport/http/api"
	"mawared/internal/transport/http/middleware"
	"mawared/internal/transport/http/shared"
)

type Handler struct {
	Service   *settlement.Service
	Employees *employee.Service
	Metrics   *metrics.Collector
}

func NewHandler(service *settlement.Service, employees *employee.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Employees: employees, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settlement", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/preview/{employeeID}", h.handlePreview)
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/preview/{employeeID}/pdf", h.handlePreviewPDF)
	})
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) (settlement.Result, bool) {
	employeeID := chi.URLParam(r, "employeeID")

	exitDate, err := shared.ParseDate(r.URL.Query().Get("exitDate"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid exit date", middleware.GetRequestID(r.Context()))
		return settlement.Result{}, false
	}
	reason := r.URL.Query().Get("reason")
	unpaidDays := 0
	if raw := r.URL.Query().Get("unpaidDays"); raw != "" {
		if unpaidDays, err = strconv.Atoi(raw); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid unpaid days", middleware.GetRequestID(r.Context()))
			return settlement.Result{}, false
		}
	}

	result, err := h.Service.Preview(r.Context(), employeeID, exitDate, reason, unpaidDays)
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrInvalidReason), errors.Is(err, settlement.ErrExitBeforeJoin):
			api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		case errors.Is(err, store.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		default:
			api.Fail(w, http.StatusInternalServerError, "settlement_failed", "failed to compute settlement", middleware.GetRequestID(r.Context()))
		}
		return settlement.Result{}, false
	}

	if h.Metrics != nil {
		h.Metrics.SettlementPreview()
	}
	return result, true
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	result, ok := h.preview(w, r)
	if !ok {
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePreviewPDF(w http.ResponseWriter, r *http.Request) {
	result, ok := h.preview(w, r)
	if !ok {
		return
	}

	emp, err := h.Employees.Get(r.Context(), result.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}

	data, err := pdf.SettlementStatement(emp, result)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "settlement_pdf_failed", "failed to render statement", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=settlement-statement.pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Warn("settlement statement write failed", "employeeId", result.EmployeeID, "err", err)
	}
}
