package requests

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/civreg-ph/civreg/internal/platform/httpx"
	"github.com/civreg-ph/civreg/internal/shared"
)

// Handler exposes document request endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers document request routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/requests", h.List)
	r.Post("/requests", h.Submit)
	r.Get("/requests/{id}", h.Show)
	r.Post("/requests/{id}/transition", h.Transition)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	request, err := h.service.Submit(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("submit request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, request)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	request, err := h.service.Get(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, request)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListRequestsRequest{Limit: 50}
	if person := r.URL.Query().Get("person_id"); person != "" {
		req.PersonID = &person
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := Status(status)
		req.Status = &st
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
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": items, "total": total})
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
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
	request, err := h.service.Transition(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "id"), Status(req.Status), notes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, request)
}
