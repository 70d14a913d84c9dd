package residents

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/civreg-ph/civreg/internal/platform/httpx"
	"github.com/civreg-ph/civreg/internal/shared"
)

// Handler exposes resident record endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers resident routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/residents", h.List)
	r.Post("/residents", h.Create)
	r.Get("/residents/{id}", h.Show)
	r.Put("/residents/{id}", h.Update)
	r.Post("/residents/{id}/deactivate", h.Deactivate)
	r.Post("/residents/{id}/reactivate", h.Reactivate)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	person, err := h.service.Create(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("create resident", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, person)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	person, err := h.service.Get(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, person)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListPersonsRequest{Limit: 50}
	if search := r.URL.Query().Get("search"); search != "" {
		req.Search = &search
	}
	if active := r.URL.Query().Get("is_active"); active != "" {
		v := active == "true"
		req.IsActive = &v
	}
	if voter := r.URL.Query().Get("is_voter"); voter != "" {
		v := voter == "true"
		req.IsVoter = &v
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		req.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		req.Offset = offset
	}

	persons, total, err := h.service.List(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"residents": persons, "total": total})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePersonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	person, err := h.service.Update(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, person)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	var req DeactivatePersonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	person, err := h.service.Deactivate(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, person)
}

func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	person, err := h.service.Reactivate(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, person)
}
