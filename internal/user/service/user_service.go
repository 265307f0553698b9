package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bistro-boss/backend/internal/audit"
	auditdomain "bistro-boss/backend/internal/audit/domain"
	"bistro-boss/backend/internal/db"
	"bistro-boss/backend/internal/security"
	"bistro-boss/backend/internal/user/domain"
)

// Sentinel errors for the user service; the handler maps them to HTTP statuses.
var (
	ErrInvalidUser = errors.New("invalid user")
	ErrNotFound    = errors.New("user not found")
)

// UserRepo is the user repository needed by the service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	SetRole(ctx context.Context, id string, role domain.Role, updatedAt time.Time) (bool, error)
}

// Authorizer decides whether a user holds the admin role.
type Authorizer interface {
	IsAdmin(ctx context.Context, u *domain.User) (bool, error)
}

// UserService registers users and manages roles.
type UserService struct {
	repo  UserRepo
	authz Authorizer
	audit audit.AuditLogger
	now   func() time.Time
}

// NewUserService returns a UserService. auditLogger may be nil.
func NewUserService(repo UserRepo, authz Authorizer, auditLogger audit.AuditLogger) *UserService {
	return &UserService{repo: repo, authz: authz, audit: auditLogger, now: time.Now}
}

// Register creates a customer record for email unless one exists. created is false when the email
// was already registered; the existing record is returned and nothing is written.
func (s *UserService) Register(ctx context.Context, email, name string) (u *domain.User, created bool, err error) {
	email = security.NormalizeEmail(email)
	if email == "" {
		return nil, false, fmt.Errorf("%w: email is required", ErrInvalidUser)
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := s.now().UTC()
	u = &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      domain.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if !errors.Is(err, db.ErrConflict) {
			return nil, false, err
		}
		// Lost a race with a concurrent registration; the unique index kept one record.
		existing, gerr := s.repo.GetByEmail(ctx, email)
		if gerr != nil || existing == nil {
			return nil, false, errors.Join(err, gerr)
		}
		return existing, false, nil
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, email, auditdomain.ActionUserRegistered, "user", map[string]any{"user_id": u.ID})
	}
	return u, true, nil
}

// List returns every user. Never nil.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// PromoteToAdmin grants the admin role to the user with id. Returns ErrNotFound for an unknown id.
func (s *UserService) PromoteToAdmin(ctx context.Context, actorEmail, id string) (modified int64, err error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if target == nil {
		return 0, ErrNotFound
	}
	if target.Role == domain.RoleAdmin {
		return 0, nil
	}
	ok, err := s.repo.SetRole(ctx, id, domain.RoleAdmin, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotFound
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, actorEmail, auditdomain.ActionRolePromoted, "user", map[string]any{
			"user_id": id,
			"email":   target.Email,
		})
	}
	return 1, nil
}

// IsAdmin reports whether email belongs to an admin. An unknown email is not an admin.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.repo.GetByEmail(ctx, security.NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	return s.authz.IsAdmin(ctx, u)
}
