package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trainhub/trainhub/internal/platform/httpx"
	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/shared"
)

// Handler manages user and profile endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *httpx.Validator
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator(), rbac: rbac}
}

// MountUserRoutes registers /user routes. Authentication is optional there:
// anonymous callers are refused by the superuser check instead.
func (h *Handler) MountUserRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Identify)
		r.Delete("/{id}", h.deleteUser)
	})
}

// MountProfileRoutes registers /profile routes.
func (h *Handler) MountProfileRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/", h.getProfile)
		r.Get("/{id}", h.getProfile)
		r.Put("/", h.updateProfile)
		r.Put("/{id}", h.updateProfile)
		r.Delete("/", h.deleteProfile)
		r.Delete("/{id}", h.deleteProfile)
	})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	actor := rbac.PrincipalFromContext(r.Context())
	if id == nil {
		if !actor.IsSuperUser() {
			httpx.RespondError(w, h.logger, shared.Forbidden(rbac.MsgCannotDeleteUsers))
			return
		}
		httpx.RespondError(w, h.logger, shared.Validation(rbac.MsgUserIDRequired))
		return
	}
	if err := h.service.DeleteUser(r.Context(), actor, *id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusNoContent, "User deleted successfully")
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	actor := rbac.PrincipalFromContext(r.Context())
	if id != nil {
		user, err := h.service.GetProfile(r.Context(), actor, *id)
		if err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
		httpx.JSON(w, http.StatusOK, user)
		return
	}
	users, err := h.service.ListProfiles(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req ProfileUpdate
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), rbac.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.DeleteProfile(r.Context(), rbac.PrincipalFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusNoContent, "User deleted successfully")
}
