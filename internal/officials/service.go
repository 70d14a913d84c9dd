package officials

import (
	"context"
	"fmt"
	"time"

	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/shared"
)

type UpsertOfficialRequest struct {
	ID        int64      `json:"id,omitempty"`
	FullName  string     `json:"full_name" validate:"required,max=255"`
	Position  string     `json:"position" validate:"required,max=100"`
	TermStart time.Time  `json:"term_start" validate:"required"`
	TermEnd   *time.Time `json:"term_end,omitempty"`
	SortOrder int        `json:"sort_order" validate:"gte=0"`
}

// Service maintains the officials roster.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the roster. Any authenticated account may read it.
func (s *Service) List(ctx context.Context, actor shared.Actor, activeOnly bool) ([]Official, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	return s.repo.List(ctx, activeOnly)
}

// Signatory returns the active official holding the captain position,
// for certificate rendering.
func (s *Service) Signatory(ctx context.Context) (*Official, error) {
	return s.repo.FindByPosition(ctx, PositionCaptain)
}

// Upsert creates or updates a roster entry. Admin or above.
func (s *Service) Upsert(ctx context.Context, actor shared.Actor, req UpsertOfficialRequest) (*Official, error) {
	if !actor.Staff() || !roles.AtLeast(actor.Role, roles.RoleAdmin) {
		return nil, fmt.Errorf("%w: roster maintenance requires admin", shared.ErrUnauthorized)
	}
	if req.TermEnd != nil && req.TermEnd.Before(req.TermStart) {
		return nil, fmt.Errorf("%w: term end precedes term start", shared.ErrValidation)
	}
	return s.repo.Upsert(ctx, Official{
		ID:        req.ID,
		FullName:  req.FullName,
		Position:  req.Position,
		TermStart: req.TermStart,
		TermEnd:   req.TermEnd,
		SortOrder: req.SortOrder,
		Active:    true,
	})
}

// SetActive toggles a roster entry. Admin or above.
func (s *Service) SetActive(ctx context.Context, actor shared.Actor, id int64, active bool) error {
	if !actor.Staff() || !roles.AtLeast(actor.Role, roles.RoleAdmin) {
		return fmt.Errorf("%w: roster maintenance requires admin", shared.ErrUnauthorized)
	}
	return s.repo.SetActive(ctx, id, active)
}
