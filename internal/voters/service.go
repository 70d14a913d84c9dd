package voters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/sequence"
	"github.com/civreg-ph/civreg/internal/shared"
)

// SeriesPrefix is the reference series for voter applications.
const SeriesPrefix = "VA"

// PersonStore resolves resident records for submission checks.
type PersonStore interface {
	Get(ctx context.Context, id string) (*residents.Person, error)
}

// Service governs the voter application workflow.
type Service struct {
	repo      Repository
	persons   PersonStore
	allocator *sequence.Allocator
	audit     *shared.AuditLogger
	logger    *slog.Logger
	metrics   TransitionRecorder
	now       func() time.Time
	slipRef   func(year int) (string, error)
}

// TransitionRecorder counts workflow state changes.
type TransitionRecorder interface {
	RecordTransition(entity, to string)
}

// NewService builds a Service instance.
func NewService(repo Repository, persons PersonStore, allocator *sequence.Allocator, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		persons:   persons,
		allocator: allocator,
		audit:     audit,
		logger:    logger,
		now:       time.Now,
		slipRef:   NewSlipReference,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithSlipReference overrides slip reference generation. Used by tests.
func (s *Service) WithSlipReference(gen func(year int) (string, error)) *Service {
	s.slipRef = gen
	return s
}

// WithMetrics attaches a transition recorder.
func (s *Service) WithMetrics(rec TransitionRecorder) *Service {
	s.metrics = rec
	return s
}

// Submit files a new application. Any authenticated account may submit;
// resident accounts may only file for their own record.
func (s *Service) Submit(ctx context.Context, actor shared.Actor, req SubmitApplicationRequest) (*VoterApplication, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	if !actor.Staff() {
		if actor.PersonID == nil || *actor.PersonID != req.PersonID {
			return nil, fmt.Errorf("%w: residents may only apply for their own record", shared.ErrUnauthorized)
		}
	}
	if req.IDFrontRef == "" || req.IDBackRef == "" {
		return nil, fmt.Errorf("%w: both identification photos are required", shared.ErrValidation)
	}
	if req.TransferDetails != nil && req.Kind != KindTransfer {
		return nil, fmt.Errorf("%w: transfer details apply to transfer applications only", shared.ErrValidation)
	}

	person, err := s.persons.Get(ctx, req.PersonID)
	if err != nil {
		return nil, fmt.Errorf("resolve resident: %w", err)
	}
	if !person.IsActive {
		return nil, fmt.Errorf("%w: resident %s is inactive", shared.ErrInvalidState, person.ID)
	}

	id, err := s.allocator.Next(ctx, SeriesPrefix)
	if err != nil {
		return nil, fmt.Errorf("allocate application id: %w", err)
	}

	app := VoterApplication{
		ID:              id,
		PersonID:        person.ID,
		Kind:            req.Kind,
		IDFrontRef:      req.IDFrontRef,
		IDBackRef:       req.IDBackRef,
		TransferDetails: req.TransferDetails,
		Status:          StatusPending,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.recordAudit(ctx, actor, "SUBMIT", id, map[string]any{"kind": req.Kind})
	return s.repo.Get(ctx, id)
}

// SetUnderReview moves a pending application into review. Staff only.
func (s *Service) SetUnderReview(ctx context.Context, actor shared.Actor, id string) (*VoterApplication, error) {
	return s.mutate(ctx, actor, id, "UNDER_REVIEW", func(a *VoterApplication) error {
		return a.SetUnderReview(actor.Username, s.now())
	})
}

// Approve clears an application for scheduling. Staff only.
func (s *Service) Approve(ctx context.Context, actor shared.Actor, id, notes string) (*VoterApplication, error) {
	return s.mutate(ctx, actor, id, "APPROVE", func(a *VoterApplication) error {
		return a.Approve(actor.Username, notes, s.now())
	})
}

// Reject closes an application. Staff only, legal from pending and
// under review.
func (s *Service) Reject(ctx context.Context, actor shared.Actor, id, notes string) (*VoterApplication, error) {
	return s.mutate(ctx, actor, id, "REJECT", func(a *VoterApplication) error {
		return a.Reject(actor.Username, notes, s.now())
	})
}

// Schedule books the verification appointment and generates the
// appointment slip reference. Staff only.
func (s *Service) Schedule(ctx context.Context, actor shared.Actor, id string, req ScheduleRequest) (*VoterApplication, error) {
	slip, err := s.slipRef(s.now().Year())
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, "SCHEDULE", func(a *VoterApplication) error {
		return a.Schedule(req.AppointmentAt, req.Venue, slip, s.now())
	})
}

// MarkVerified closes out a kept appointment and flips the resident's
// voter flag. Staff only.
func (s *Service) MarkVerified(ctx context.Context, actor shared.Actor, id string) (*VoterApplication, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: application review is staff only", shared.ErrUnauthorized)
	}
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := app.MarkVerified(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.MarkVerified(ctx, *app); err != nil {
		return nil, fmt.Errorf("verify application: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTransition("voter_application", string(StatusVerified))
	}
	s.recordAudit(ctx, actor, "VERIFY", id, map[string]any{"person_id": app.PersonID})
	return s.repo.Get(ctx, id)
}

// Get returns a single application. Residents see only their own.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id string) (*VoterApplication, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Staff() {
		if actor.PersonID == nil || *actor.PersonID != app.PersonID {
			return nil, fmt.Errorf("%w: applications are visible to their owner and staff", shared.ErrUnauthorized)
		}
	}
	return app, nil
}

// List returns applications matching the filters. Residents are scoped
// to their own record.
func (s *Service) List(ctx context.Context, actor shared.Actor, req ListApplicationsRequest) ([]VoterApplication, int, error) {
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

func (s *Service) mutate(ctx context.Context, actor shared.Actor, id, action string, apply func(*VoterApplication) error) (*VoterApplication, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: application review is staff only", shared.ErrUnauthorized)
	}
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(app); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, *app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTransition("voter_application", string(app.Status))
	}
	s.recordAudit(ctx, actor, action, id, nil)
	return s.repo.Get(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditEntry{Actor: actor.Username, Action: action, Entity: "voter_application", EntityID: id, Meta: meta, At: s.now()}
	if err := s.audit.Record(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.Any("error", err))
	}
}
