package residents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/sequence"
	"github.com/civreg-ph/civreg/internal/shared"
)

// SeriesPrefix is the reference series for resident identifiers.
const SeriesPrefix = "BR"

var nameCaser = cases.Title(language.English)

// Service handles resident record business logic.
type Service struct {
	repo      Repository
	allocator *sequence.Allocator
	audit     *shared.AuditLogger
	logger    *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, allocator *sequence.Allocator, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, allocator: allocator, audit: audit, logger: logger}
}

// Create registers a new resident. Requires a clerk-or-above actor.
// Active residents with the same name and birth date are reported as a
// conflict unless the actor explicitly allows the duplicate.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreatePersonRequest) (*Person, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: resident records are created by barangay staff", shared.ErrUnauthorized)
	}

	firstName := canonicalName(req.FirstName)
	lastName := canonicalName(req.LastName)

	if !req.AllowDuplicate {
		dupes, err := s.repo.FindActiveDuplicates(ctx, firstName, lastName, req.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("check duplicates: %w", err)
		}
		if len(dupes) > 0 {
			return nil, fmt.Errorf("%w: an active resident with the same name and birth date exists (%s)", shared.ErrConflict, dupes[0].ID)
		}
	}

	id, err := s.allocator.Next(ctx, SeriesPrefix)
	if err != nil {
		return nil, fmt.Errorf("allocate resident id: %w", err)
	}

	person := Person{
		ID:            id,
		FirstName:     firstName,
		MiddleName:    canonicalNamePtr(req.MiddleName),
		LastName:      lastName,
		Suffix:        req.Suffix,
		BirthDate:     req.BirthDate,
		Gender:        req.Gender,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		IsActive:      true,
	}

	if err := s.repo.Create(ctx, person); err != nil {
		return nil, fmt.Errorf("create resident: %w", err)
	}

	s.recordAudit(ctx, actor, "CREATE", person.ID, map[string]any{"name": person.FullName()})
	return s.repo.Get(ctx, person.ID)
}

// Update modifies demographic fields. The identifier never changes.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id string, req UpdatePersonRequest) (*Person, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: resident records are updated by barangay staff", shared.ErrUnauthorized)
	}

	person, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		person.FirstName = canonicalName(*req.FirstName)
	}
	if req.MiddleName != nil {
		person.MiddleName = canonicalNamePtr(req.MiddleName)
	}
	if req.LastName != nil {
		person.LastName = canonicalName(*req.LastName)
	}
	if req.Suffix != nil {
		person.Suffix = req.Suffix
	}
	if req.BirthDate != nil {
		person.BirthDate = *req.BirthDate
	}
	if req.Gender != nil {
		person.Gender = *req.Gender
	}
	if req.Address != nil {
		person.Address = req.Address
	}
	if req.ContactNumber != nil {
		person.ContactNumber = req.ContactNumber
	}

	if err := s.repo.Update(ctx, *person); err != nil {
		return nil, fmt.Errorf("update resident: %w", err)
	}

	s.recordAudit(ctx, actor, "UPDATE", id, nil)
	return s.repo.Get(ctx, id)
}

// Deactivate soft-disables a resident record. Admin-or-above only.
func (s *Service) Deactivate(ctx context.Context, actor shared.Actor, id, reason string) (*Person, error) {
	if !actor.Authenticated() || !roles.AtLeast(actor.Role, roles.RoleAdmin) {
		return nil, fmt.Errorf("%w: deactivation requires an admin", shared.ErrUnauthorized)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: deactivation reason is required", shared.ErrValidation)
	}

	person, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !person.IsActive {
		return nil, fmt.Errorf("%w: resident %s is already inactive", shared.ErrInvalidState, id)
	}

	if err := s.repo.SetActive(ctx, id, false, &reason); err != nil {
		return nil, fmt.Errorf("deactivate resident: %w", err)
	}

	s.recordAudit(ctx, actor, "DEACTIVATE", id, map[string]any{"reason": reason})
	return s.repo.Get(ctx, id)
}

// Reactivate reverses a deactivation. Admin-or-above only.
func (s *Service) Reactivate(ctx context.Context, actor shared.Actor, id string) (*Person, error) {
	if !actor.Authenticated() || !roles.AtLeast(actor.Role, roles.RoleAdmin) {
		return nil, fmt.Errorf("%w: reactivation requires an admin", shared.ErrUnauthorized)
	}

	person, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if person.IsActive {
		return nil, fmt.Errorf("%w: resident %s is already active", shared.ErrInvalidState, id)
	}

	if err := s.repo.SetActive(ctx, id, true, nil); err != nil {
		return nil, fmt.Errorf("reactivate resident: %w", err)
	}

	s.recordAudit(ctx, actor, "REACTIVATE", id, nil)
	return s.repo.Get(ctx, id)
}

// Get returns one resident record.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id string) (*Person, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	return s.repo.Get(ctx, id)
}

// List returns resident records matching the filters.
func (s *Service) List(ctx context.Context, actor shared.Actor, req ListPersonsRequest) ([]Person, int, error) {
	if !actor.Staff() {
		return nil, 0, fmt.Errorf("%w: resident listings are staff only", shared.ErrUnauthorized)
	}
	return s.repo.List(ctx, req)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditEntry{Actor: actor.Username, Action: action, Entity: "person", EntityID: id, Meta: meta, At: time.Now()}
	if err := s.audit.Record(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.Any("error", err))
	}
}

func canonicalName(name string) string {
	return nameCaser.String(strings.TrimSpace(name))
}

func canonicalNamePtr(name *string) *string {
	if name == nil {
		return nil
	}
	v := canonicalName(*name)
	if v == "" {
		return nil
	}
	return &v
}
