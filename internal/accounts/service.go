package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/shared"
)

// PersonStore resolves resident records for account linking.
type PersonStore interface {
	Get(ctx context.Context, id string) (*residents.Person, error)
}

// Service wraps account management and authentication rules.
type Service struct {
	repo    Repository
	persons PersonStore
	audit   *shared.AuditLogger
	logger  *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, persons PersonStore, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, persons: persons, audit: audit, logger: logger}
}

// Authenticate validates username/password credentials. Inactive
// accounts fail the same way as wrong passwords.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	account, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return account, nil
}

// LoadActor resolves the acting account for a session-authenticated
// request. Deactivated accounts resolve to the anonymous actor.
func (s *Service) LoadActor(ctx context.Context, accountID int64) (shared.Actor, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return shared.Actor{}, err
	}
	if !account.IsActive {
		return shared.Actor{}, nil
	}
	return account.Actor(), nil
}

// Create registers a new account. The acting account must be senior to
// the requested role per the role hierarchy table.
func (s *Service) Create(ctx context.Context, actor shared.Actor, req CreateAccountRequest) (*Account, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}

	role, err := roles.Parse(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	if !roles.CanCreateRole(actor.Role, role) {
		return nil, fmt.Errorf("%w: role %s may not create %s accounts", shared.ErrUnauthorized, actor.Role, role)
	}

	username := strings.TrimSpace(req.Username)
	if existing, err := s.repo.FindByUsername(ctx, username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: username %q is taken", shared.ErrConflict, username)
	}

	if req.PersonID != nil {
		if err := s.checkPersonLinkable(ctx, *req.PersonID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		PersonID:     req.PersonID,
		IsActive:     true,
	}
	id, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.recordAudit(ctx, actor, "CREATE", id, map[string]any{"username": username, "role": string(role)})
	return s.repo.FindByID(ctx, id)
}

// ChangeRole reassigns an account's role. Self-targeting is always
// rejected regardless of the hierarchy table.
func (s *Service) ChangeRole(ctx context.Context, actor shared.Actor, targetID int64, newRole string) (*Account, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	if actor.AccountID == targetID {
		return nil, fmt.Errorf("%w: accounts may not change their own role", shared.ErrUnauthorized)
	}

	role, err := roles.Parse(newRole)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !roles.CanManage(actor.Role, target.Role) {
		return nil, fmt.Errorf("%w: role %s may not manage %s accounts", shared.ErrUnauthorized, actor.Role, target.Role)
	}
	if !roles.CanCreateRole(actor.Role, role) {
		return nil, fmt.Errorf("%w: role %s may not assign %s", shared.ErrUnauthorized, actor.Role, role)
	}
	if target.Role == role {
		return nil, fmt.Errorf("%w: account already has role %s", shared.ErrConflict, role)
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}

	s.recordAudit(ctx, actor, "CHANGE_ROLE", targetID, map[string]any{"from": string(target.Role), "to": string(role)})
	return s.repo.FindByID(ctx, targetID)
}

// SetActive toggles the soft-active flag. Deactivation never deletes.
func (s *Service) SetActive(ctx context.Context, actor shared.Actor, targetID int64, active bool) (*Account, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	if actor.AccountID == targetID {
		return nil, fmt.Errorf("%w: accounts may not deactivate themselves", shared.ErrUnauthorized)
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !roles.CanManage(actor.Role, target.Role) {
		return nil, fmt.Errorf("%w: role %s may not manage %s accounts", shared.ErrUnauthorized, actor.Role, target.Role)
	}
	if target.IsActive == active {
		return nil, fmt.Errorf("%w: account is already in the requested state", shared.ErrInvalidState)
	}

	if err := s.repo.SetActive(ctx, targetID, active); err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}

	action := "DEACTIVATE"
	if active {
		action = "REACTIVATE"
	}
	s.recordAudit(ctx, actor, action, targetID, nil)
	return s.repo.FindByID(ctx, targetID)
}

// LinkPerson associates an account with a resident record. A resident
// may be linked to at most one account.
func (s *Service) LinkPerson(ctx context.Context, actor shared.Actor, targetID int64, personID string) (*Account, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}

	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !roles.CanManage(actor.Role, target.Role) {
		return nil, fmt.Errorf("%w: role %s may not manage %s accounts", shared.ErrUnauthorized, actor.Role, target.Role)
	}
	if err := s.checkPersonLinkable(ctx, personID); err != nil {
		return nil, err
	}

	if err := s.repo.LinkPerson(ctx, targetID, &personID); err != nil {
		return nil, fmt.Errorf("link person: %w", err)
	}

	s.recordAudit(ctx, actor, "LINK_PERSON", targetID, map[string]any{"person_id": personID})
	return s.repo.FindByID(ctx, targetID)
}

// ChangePassword rehashes and stores a new password for self or a
// managed account.
func (s *Service) ChangePassword(ctx context.Context, actor shared.Actor, targetID int64, password string) error {
	if !actor.Authenticated() {
		return fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	if actor.AccountID != targetID {
		target, err := s.repo.FindByID(ctx, targetID)
		if err != nil {
			return err
		}
		if !roles.CanManage(actor.Role, target.Role) {
			return fmt.Errorf("%w: role %s may not manage %s accounts", shared.ErrUnauthorized, actor.Role, target.Role)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, targetID, string(hash)); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.recordAudit(ctx, actor, "CHANGE_PASSWORD", targetID, nil)
	return nil
}

// List returns all accounts for staff review.
func (s *Service) List(ctx context.Context, actor shared.Actor) ([]Account, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: account listings are staff only", shared.ErrUnauthorized)
	}
	return s.repo.List(ctx)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, actor shared.Actor, id int64) (*Account, error) {
	if !actor.Authenticated() {
		return nil, fmt.Errorf("%w: authentication required", shared.ErrUnauthorized)
	}
	if actor.AccountID != id && !actor.Staff() {
		return nil, fmt.Errorf("%w: accounts may only view themselves", shared.ErrUnauthorized)
	}
	return s.repo.FindByID(ctx, id)
}

// SeedTopAdmin creates the first-run top-admin account when none
// exists. Returns nil without change when a top-admin is present.
func (s *Service) SeedTopAdmin(ctx context.Context, username, password string) error {
	count, err := s.repo.CountByRole(ctx, roles.RoleTopAdmin)
	if err != nil {
		return fmt.Errorf("count top admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.repo.Create(ctx, Account{
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		Role:         roles.RoleTopAdmin,
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("seed top admin: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("seeded top admin account", slog.String("username", username))
	}
	return nil
}

func (s *Service) checkPersonLinkable(ctx context.Context, personID string) error {
	person, err := s.persons.Get(ctx, personID)
	if err != nil {
		return fmt.Errorf("resolve person %s: %w", personID, err)
	}
	if !person.IsActive {
		return fmt.Errorf("%w: resident %s is inactive", shared.ErrInvalidState, personID)
	}
	if existing, err := s.repo.FindByPersonID(ctx, personID); err == nil && existing != nil {
		return fmt.Errorf("%w: resident %s is already linked to account %q", shared.ErrConflict, personID, existing.Username)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditEntry{
		Actor:    actor.Username,
		Action:   action,
		Entity:   "account",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
		At:       time.Now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("record audit", slog.Any("error", err))
	}
}
