package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trainhub/trainhub/internal/platform/httpx"
	"github.com/trainhub/trainhub/internal/rbac"
	"github.com/trainhub/trainhub/internal/users"
)

// Handler wires HTTP endpoints for registration, login and tokens.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *httpx.Validator
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountAuthRoutes registers /auth routes on provided router.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Post("/register/", h.handleRegister)
	r.Post("/login/", h.handleLogin)
}

// MountTokenRoutes registers /api/token routes on provided router.
func (h *Handler) MountTokenRoutes(r chi.Router) {
	r.Post("/", h.handleObtain)
	r.Post("/refresh/", h.handleRefresh)
}

type registerRequest struct {
	Username    string `json:"username" validate:"max=150"`
	Email       string `json:"email" validate:"max=254"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name" validate:"max=150"`
	LastName    string `json:"last_name" validate:"max=150"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    *bool  `json:"is_active"`
}

type registeredUser struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsActive    bool   `json:"is_active"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    registeredUser `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Refresh string      `json:"refresh"`
	Access  string      `json:"access"`
	Data    *users.User `json:"data"`
}

type obtainRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user, err := h.service.Register(r.Context(), Registration{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Requested: rbac.Privileges{IsStaff: req.IsStaff, IsSuperuser: req.IsSuperuser, IsActive: active},
	})
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, registerResponse{
		Message: MsgUserCreated,
		User: registeredUser{
			Username:    user.Username,
			Email:       user.Email,
			IsSuperuser: user.IsSuperuser,
			IsStaff:     user.IsStaff,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			IsActive:    user.IsActive,
		},
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	pair, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Refresh: pair.Refresh, Access: pair.Access, Data: user})
}

func (h *Handler) handleObtain(w http.ResponseWriter, r *http.Request) {
	var req obtainRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	pair, err := h.service.ObtainPair(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	out, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
