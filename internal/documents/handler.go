package documents

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/civreg-ph/civreg/internal/platform/httpx"
	"github.com/civreg-ph/civreg/internal/shared"
)

// Handler exposes issued document endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers issued document routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/documents", h.List)
	r.Post("/documents", h.Issue)
	r.Get("/documents/{reference}", h.Show)
	r.Put("/documents/{reference}/metadata", h.UpdateMetadata)
}

func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	var req IssueDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.Issue(r.Context(), shared.ActorFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("issue document", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "reference"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListDocumentsRequest{Limit: 50}
	if person := r.URL.Query().Get("person_id"); person != "" {
		req.PersonID = &person
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
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": items, "total": total})
}

func (h *Handler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	var req UpdateMetadataRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.UpdateMetadata(r.Context(), shared.ActorFromContext(r.Context()), chi.URLParam(r, "reference"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}
