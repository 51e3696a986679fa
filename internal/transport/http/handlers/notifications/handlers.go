package notificationshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mawared/internal/domain/auth"
	"mawared/internal/domain/notifications"
	"mawared/internal/store"
	"mawared/internal/transport/http/api"
	"mawared/internal/transport/http/middleware"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleEmployee)).Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" || !auth.AtLeast(user.Role, auth.RoleHR) {
		employeeID = user.EmployeeID
	}

	out, err := h.Service.List(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.MarkRead(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "notification not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "notification_update_failed", "failed to mark notification", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "read"}, middleware.GetRequestID(r.Context()))
}
