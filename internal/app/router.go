package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/trainhub/trainhub/internal/auth"
	"github.com/trainhub/trainhub/internal/contracts"
	"github.com/trainhub/trainhub/internal/observability"
	"github.com/trainhub/trainhub/internal/platform/httpx"
	"github.com/trainhub/trainhub/internal/schedules"
	"github.com/trainhub/trainhub/internal/users"
	"github.com/trainhub/trainhub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	ContractsHandler *contracts.Handler
	SchedulesHandler *schedules.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusMethodNotAllowed, `Method "`+r.Method+`" not allowed.`)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountAuthRoutes)
		r.Route("/api/token", params.AuthHandler.MountTokenRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/user", params.UsersHandler.MountUserRoutes)
		r.Route("/profile", params.UsersHandler.MountProfileRoutes)
	}
	if params.ContractsHandler != nil {
		r.Route("/contracts", params.ContractsHandler.MountRoutes)
	}
	if params.SchedulesHandler != nil {
		r.Route("/schedule", params.SchedulesHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
