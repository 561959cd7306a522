package schedules

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trainhub/trainhub/internal/platform/httpx"
	"github.com/trainhub/trainhub/internal/rbac"
)

// Handler exposes training schedule endpoints.
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

// MountRoutes registers schedule routes; detail paths keep their trailing slash.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Get("/{id}/", h.get)
		r.Put("/{id}/", h.update)
		r.Delete("/{id}/", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters, err := listFilters(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	items, err := h.service.List(r.Context(), rbac.PrincipalFromContext(r.Context()), filters)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	item, err := h.service.Get(r.Context(), rbac.PrincipalFromContext(r.Context()), *id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	item, err := h.service.Create(r.Context(), rbac.PrincipalFromContext(r.Context()), req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req UpdateRequest
	if id != nil {
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.RespondError(w, h.logger, err)
			return
		}
	}
	item, err := h.service.Update(r.Context(), rbac.PrincipalFromContext(r.Context()), id, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), rbac.PrincipalFromContext(r.Context()), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusNoContent, "Training schedule deleted successfully")
}

func listFilters(r *http.Request) (rbac.Filters, error) {
	id, err := httpx.QueryID(r, "id")
	if err != nil {
		return rbac.Filters{}, err
	}
	user, err := httpx.QueryID(r, "user")
	if err != nil {
		return rbac.Filters{}, err
	}
	return rbac.Filters{ID: id, User: user}, nil
}
