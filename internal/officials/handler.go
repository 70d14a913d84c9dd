package officials

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/civreg-ph/civreg/internal/platform/httpx"
	"github.com/civreg-ph/civreg/internal/shared"
)

// Handler exposes officials roster endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers roster routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/officials", h.List)
	r.Post("/officials", h.Upsert)
	r.Post("/officials/{id}/deactivate", h.Deactivate)
	r.Post("/officials/{id}/reactivate", h.Reactivate)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	items, err := h.service.List(r.Context(), shared.ActorFromContext(r.Context()), activeOnly)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"officials": items})
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertOfficialRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	official, err := h.service.Upsert(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("upsert official", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, official)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "official id must be numeric")
		return
	}
	if err := h.service.SetActive(r.Context(), shared.ActorFromContext(r.Context()), id, active); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "active": active})
}
