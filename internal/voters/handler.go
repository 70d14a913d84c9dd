package voters

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/civreg-ph/civreg/internal/platform/httpx"
	"github.com/civreg-ph/civreg/internal/shared"
)

// Handler exposes voter application endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers voter application routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/voter-applications", h.List)
	r.Post("/voter-applications", h.Submit)
	r.Get("/voter-applications/{id}", h.Show)
	r.Post("/voter-applications/{id}/review", h.SetUnderReview)
	r.Post("/voter-applications/{id}/approve", h.Approve)
	r.Post("/voter-applications/{id}/reject", h.Reject)
	r.Post("/voter-applications/{id}/schedule", h.Schedule)
	r.Post("/voter-applications/{id}/verify", h.MarkVerified)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitApplicationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	app, err := h.service.Submit(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("submit voter application", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, app)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Get(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListApplicationsRequest{Limit: 50}
	if person := r.URL.Query().Get("person_id"); person != "" {
		req.PersonID = &person
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := Status(status)
		req.Status = &st
	}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		k := Kind(kind)
		req.Kind = &k
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		req.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		req.Offset = offset
	}

	items, total, err := h.service.List(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"applications": items, "total": total})
}

func (h *Handler) SetUnderReview(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.SetUnderReview(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.reviewed(w, r, h.service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.reviewed(w, r, h.service.Reject)
}

func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	app, err := h.service.Schedule(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) MarkVerified(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.MarkVerified(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) reviewed(w http.ResponseWriter, r *http.Request, call func(context.Context, shared.Actor, string, string) (*VoterApplication, error)) {
	var req ReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}
	app, err := call(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"), notes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}
