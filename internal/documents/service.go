package documents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civreg-ph/civreg/internal/requests"
	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/sequence"
	"github.com/civreg-ph/civreg/internal/shared"
)

// PersonStore resolves resident records for issuance checks.
type PersonStore interface {
	Get(ctx context.Context, id string) (*residents.Person, error)
}

// RequestStore resolves document requests being closed by issuance.
type RequestStore interface {
	Get(ctx context.Context, id string) (*requests.DocumentRequest, error)
}

// Service issues documents, optionally closing out the originating
// request in the same unit of work.
type Service struct {
	repo      Repository
	persons   PersonStore
	requests  RequestStore
	allocator *sequence.Allocator
	audit     *shared.AuditLogger
	logger    *slog.Logger
	metrics   IssuanceRecorder
	now       func() time.Time
}

// IssuanceRecorder counts issued documents and request closures.
type IssuanceRecorder interface {
	RecordIssuance(kind string)
	RecordTransition(entity, to string)
}

// NewService builds a Service instance.
func NewService(repo Repository, persons PersonStore, reqs RequestStore, allocator *sequence.Allocator, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, persons: persons, requests: reqs, allocator: allocator, audit: audit, logger: logger, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithMetrics attaches an issuance recorder.
func (s *Service) WithMetrics(rec IssuanceRecorder) *Service {
	s.metrics = rec
	return s
}

// Issue creates an issued document for a resident. When a request id is
// supplied the request must belong to the same resident and be
// approved; it is marked issued together with the document insert.
// Walk-in issuance, with no originating request, is also legal.
func (s *Service) Issue(ctx context.Context, actor shared.Actor, req IssueDocumentRequest) (*IssuedDocument, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: document issuance is staff only", shared.ErrUnauthorized)
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown document kind %q", shared.ErrValidation, req.Kind)
	}

	person, err := s.persons.Get(ctx, req.PersonID)
	if err != nil {
		return nil, fmt.Errorf("resolve resident: %w", err)
	}
	if !person.IsActive {
		return nil, fmt.Errorf("%w: resident %s is inactive", shared.ErrInvalidState, person.ID)
	}

	var request *requests.DocumentRequest
	if req.RequestID != nil {
		request, err = s.requests.Get(ctx, *req.RequestID)
		if err != nil {
			return nil, fmt.Errorf("resolve request: %w", err)
		}
		if request.PersonID != person.ID {
			return nil, fmt.Errorf("%w: request does not belong to resident", shared.ErrInvalidState)
		}
		if request.Status != requests.StatusApproved {
			return nil, fmt.Errorf("%w: only approved requests can be issued", shared.ErrInvalidState)
		}
	}

	reference, err := s.allocator.Next(ctx, req.Kind.Prefix())
	if err != nil {
		return nil, fmt.Errorf("allocate reference: %w", err)
	}

	now := s.now()
	doc := IssuedDocument{
		Reference:      reference,
		PersonID:       person.ID,
		Kind:           req.Kind,
		Purpose:        req.Purpose,
		IssueDate:      now,
		ExpiryDate:     req.ExpiryDate,
		IssuedBy:       actor.Username,
		RequestID:      req.RequestID,
		AdditionalInfo: req.AdditionalInfo,
		PhotoRef:       req.PhotoRef,
	}
	if request != nil {
		if err := request.MarkIssued(reference, actor.Username, now); err != nil {
			return nil, err
		}
	}
	if err := s.repo.CreateIssued(ctx, doc, request); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordIssuance(string(req.Kind))
		if request != nil {
			s.metrics.RecordTransition("document_request", string(requests.StatusIssued))
		}
	}
	meta := map[string]any{"kind": req.Kind, "person_id": person.ID}
	if req.RequestID != nil {
		meta["request_id"] = *req.RequestID
	}
	s.recordAudit(ctx, actor, "ISSUE", reference, meta)
	return s.repo.Get(ctx, reference)
}

// UpdateMetadata adjusts the auxiliary fields of an issued document.
// The reference, kind, and person are immutable.
func (s *Service) UpdateMetadata(ctx context.Context, actor shared.Actor, reference string, req UpdateMetadataRequest) (*IssuedDocument, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: document maintenance is staff only", shared.ErrUnauthorized)
	}
	if err := s.repo.UpdateMetadata(ctx, reference, req.AdditionalInfo, req.PhotoRef); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "UPDATE_METADATA", reference, nil)
	return s.repo.Get(ctx, reference)
}

// Get returns a single document. Residents see only their own.
func (s *Service) Get(ctx context.Context, actor shared.Actor, reference string) (*IssuedDocument, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	doc, err := s.repo.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !actor.Staff() {
		if actor.PersonID == nil || *actor.PersonID != doc.PersonID {
			return nil, fmt.Errorf("%w: documents are visible to their owner and staff", shared.ErrUnauthorized)
		}
	}
	return doc, nil
}

// List returns documents matching the filters. Residents are scoped to
// their own record.
func (s *Service) List(ctx context.Context, actor shared.Actor, req ListDocumentsRequest) ([]IssuedDocument, int, error) {
	if !actor.Authenticated() {
		return nil, 0, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	if !actor.Staff() {
		if actor.PersonID == nil {
			return nil, 0, fmt.Errorf("%w: account is not linked to a resident record", shared.ErrUnauthorized)
		}
		req.PersonID = actor.PersonID
	}
	return s.repo.List(ctx, req)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action, reference string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditEntry{Actor: actor.Username, Action: action, Entity: "issued_document", EntityID: reference, Meta: meta, At: s.now()}
	if err := s.audit.Record(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.Any("error", err))
	}
}
