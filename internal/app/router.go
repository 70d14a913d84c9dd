package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/civreg-ph/civreg/internal/accounts"
	"github.com/civreg-ph/civreg/internal/documents"
	"github.com/civreg-ph/civreg/internal/observability"
	"github.com/civreg-ph/civreg/internal/officials"
	"github.com/civreg-ph/civreg/internal/requests"
	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/shared"
	"github.com/civreg-ph/civreg/internal/voters"
	"github.com/civreg-ph/civreg/jobs"
	"github.com/civreg-ph/civreg/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	ActorLoader    accounts.Middleware

	AccountsHandler  *accounts.Handler
	ResidentsHandler *residents.Handler
	RequestsHandler  *requests.Handler
	VotersHandler    *voters.Handler
	DocumentsHandler *documents.Handler
	OfficialsHandler *officials.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router for the civil registry API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.ActorLoader.WithActor)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AccountsHandler.MountAuthRoutes)

	// All record and workflow endpoints require a live account. The
	// services enforce role-level rules on top of this.
	r.Group(func(r chi.Router) {
		r.Use(params.ActorLoader.RequireAuthenticated)

		params.ResidentsHandler.MountRoutes(r)
		params.RequestsHandler.MountRoutes(r)
		params.VotersHandler.MountRoutes(r)
		params.DocumentsHandler.MountRoutes(r)
		params.OfficialsHandler.MountRoutes(r)
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(params.ActorLoader.RequireStaff)

		params.AccountsHandler.MountRoutes(r)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
