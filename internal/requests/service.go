package requests

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/sequence"
	"github.com/civreg-ph/civreg/internal/shared"
)

// SeriesPrefix is the reference series for document requests.
const SeriesPrefix = "DR"

// PersonStore resolves resident records for submission checks.
type PersonStore interface {
	Get(ctx context.Context, id string) (*residents.Person, error)
}

// TransitionRecorder counts workflow state changes.
type TransitionRecorder interface {
	RecordTransition(entity, to string)
}

// Service governs the document request workflow.
type Service struct {
	repo      Repository
	persons   PersonStore
	allocator *sequence.Allocator
	audit     *shared.AuditLogger
	logger    *slog.Logger
	metrics   TransitionRecorder
	now       func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository, persons PersonStore, allocator *sequence.Allocator, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, persons: persons, allocator: allocator, audit: audit, logger: logger, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithMetrics attaches a transition recorder.
func (s *Service) WithMetrics(rec TransitionRecorder) *Service {
	s.metrics = rec
	return s
}

// Submit files a new request. The acting account must be a resident
// account linked to an active resident record.
func (s *Service) Submit(ctx context.Context, actor shared.Actor, req SubmitRequest) (*DocumentRequest, error) {
	if !actor.Authenticated() || actor.Role != roles.RoleResident || actor.PersonID == nil {
		return nil, fmt.Errorf("%w: requests are submitted by linked resident accounts", shared.ErrUnauthorized)
	}

	person, err := s.persons.Get(ctx, *actor.PersonID)
	if err != nil {
		return nil, fmt.Errorf("resolve resident: %w", err)
	}
	if !person.IsActive {
		return nil, fmt.Errorf("%w: resident %s is inactive", shared.ErrInvalidState, person.ID)
	}

	id, err := s.allocator.Next(ctx, SeriesPrefix)
	if err != nil {
		return nil, fmt.Errorf("allocate request id: %w", err)
	}

	request := DocumentRequest{
		ID:              id,
		PersonID:        person.ID,
		Kind:            req.Kind,
		Purpose:         req.Purpose,
		RequestedExpiry: req.RequestedExpiry,
		ResidentNotes:   req.Notes,
		AdditionalInfo:  req.AdditionalInfo,
		Status:          StatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.recordAudit(ctx, actor, "SUBMIT", id, map[string]any{"kind": req.Kind})
	return s.repo.Get(ctx, id)
}

// Transition advances a request through the review workflow. Staff only.
func (s *Service) Transition(ctx context.Context, actor shared.Actor, id string, target Status, notes string) (*DocumentRequest, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: request review is staff only", shared.ErrUnauthorized)
	}

	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := request.Transition(target, actor.Username, notes, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, *request); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTransition("document_request", string(target))
	}
	s.recordAudit(ctx, actor, string(target), id, nil)
	return s.repo.Get(ctx, id)
}

// Get returns a single request. Residents see only their own.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id string) (*DocumentRequest, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Staff() {
		if actor.PersonID == nil || *actor.PersonID != request.PersonID {
			return nil, fmt.Errorf("%w: requests are visible to their owner and staff", shared.ErrUnauthorized)
		}
	}
	return request, nil
}

// List returns requests matching the filters. Residents are scoped to
// their own record.
func (s *Service) List(ctx context.Context, actor shared.Actor, req ListRequestsRequest) ([]DocumentRequest, int, error) {
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

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditEntry{Actor: actor.Username, Action: action, Entity: "document_request", EntityID: id, Meta: meta, At: s.now()}
	if err := s.audit.Record(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.Any("error", err))
	}
}
