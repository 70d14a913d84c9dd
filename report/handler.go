package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/civreg-ph/civreg/internal/documents"
	"github.com/civreg-ph/civreg/internal/officials"
	"github.com/civreg-ph/civreg/internal/platform/httpx"
	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/shared"
	"github.com/civreg-ph/civreg/internal/voters"
)

// DocumentSource resolves issued documents with the caller's scoping.
type DocumentSource interface {
	Get(ctx context.Context, actor shared.Actor, reference string) (*documents.IssuedDocument, error)
}

// ApplicationSource resolves voter applications with the caller's scoping.
type ApplicationSource interface {
	Get(ctx context.Context, actor shared.Actor, id string) (*voters.VoterApplication, error)
}

// PersonSource resolves resident records for rendering.
type PersonSource interface {
	Get(ctx context.Context, id string) (*residents.Person, error)
}

// SignatorySource resolves the certificate signatory.
type SignatorySource interface {
	Signatory(ctx context.Context) (*officials.Official, error)
}

// Handler renders certificates and appointment slips through Gotenberg.
type Handler struct {
	client       *Client
	logger       *slog.Logger
	documents    DocumentSource
	applications ApplicationSource
	persons      PersonSource
	signatories  SignatorySource
	barangay     string
}

// NewHandler creates a report handler.
func NewHandler(client *Client, logger *slog.Logger, docs DocumentSource, apps ApplicationSource, persons PersonSource, signatories SignatorySource, barangay string) *Handler {
	return &Handler{
		client:       client,
		logger:       logger,
		documents:    docs,
		applications: apps,
		persons:      persons,
		signatories:  signatories,
		barangay:     barangay,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/ping", h.ping)
	r.Get("/reports/documents/{reference}", h.certificate)
	r.Get("/reports/voter-applications/{id}/slip", h.slip)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) certificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := shared.ActorFromContext(ctx)

	doc, err := h.documents.Get(ctx, actor, chi.URLParam(r, "reference"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var (
		person    *residents.Person
		signatory *officials.Official
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		person, err = h.persons.Get(gctx, doc.PersonID)
		return err
	})
	g.Go(func() error {
		var err error
		signatory, err = h.signatories.Signatory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("resolve certificate data", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	html, err := RenderCertificateHTML(CertificateData{
		Reference:    doc.Reference,
		Kind:         string(doc.Kind),
		KindLabel:    KindLabel(string(doc.Kind)),
		ResidentName: person.FullName(),
		Purpose:      doc.Purpose,
		IssueDate:    doc.IssueDate,
		ExpiryDate:   doc.ExpiryDate,
		IssuedBy:     doc.IssuedBy,
		Signatory:    signatory.FullName,
		Barangay:     h.barangay,
	})
	if err != nil {
		h.logger.Error("render certificate html", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.servePDF(w, r, html, doc.Reference+".pdf")
}

func (h *Handler) slip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := shared.ActorFromContext(ctx)

	app, err := h.applications.Get(ctx, actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := voters.SlipEligible(app); err != nil {
		httpx.RespondError(w, err)
		return
	}
	person, err := h.persons.Get(ctx, app.PersonID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	html, err := RenderSlipHTML(SlipData{
		SlipReference: *app.SlipReference,
		ApplicationID: app.ID,
		ResidentName:  person.FullName(),
		Kind:          string(app.Kind),
		AppointmentAt: *app.AppointmentAt,
		Venue:         *app.Venue,
		Barangay:      h.barangay,
	})
	if err != nil {
		h.logger.Error("render slip html", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.servePDF(w, r, html, *app.SlipReference+".pdf")
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, html, filename string) {
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
