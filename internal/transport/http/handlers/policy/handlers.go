package policyhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mawared/internal/domain/auth"
	"mawared/internal/domain/policy"
	"mawared/internal/transport/http/api"
	"mawared/internal/transport/http/middleware"
)

type Handler struct {
	Service *policy.Service
}

func NewHandler(service *policy.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleEmployee)).Get("/policy", h.handleGet)
	r.With(middleware.RequireRole(auth.RoleHR)).Put("/policy", h.handleUpdate)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "policy_get_failed", "failed to load policy", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload policy.Policy
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.Update(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "policy_invalid", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}
