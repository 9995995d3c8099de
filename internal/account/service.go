package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
)

const OneTimePasswordLength = 12

type Repository interface {
	Create(ctx context.Context, a *Account, passwordHash string) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context, filter Filter) ([]*Account, error)
	ExistsForPersonnel(ctx context.Context, personnelID int64) (bool, error)
	UpdateRole(ctx context.Context, id int64, role auth.Role) error
	SetActive(ctx context.Context, id int64, active bool) error
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
}

type Service struct {
	repo       Repository
	guard      auth.Authorizer
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, guard auth.Authorizer, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		guard:      guard,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Me returns the caller's own account. Any authenticated actor may call it.
func (s *Service) Me(ctx context.Context, actor *auth.Actor) (*Account, error) {
	if !actor.Authenticated() {
		return nil, internal.ErrUnauthenticated
	}
	return s.load(ctx, actor.ID)
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Account, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityReassignRole); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list accounts", "error", err)
		return nil, internal.NewInternalError("failed to list accounts", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Account, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityReassignRole); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateDTO) (*Created, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityReassignRole); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role, _ := auth.ParseRole(dto.Role)

	password, oneTime := dto.Password, ""
	if password == "" {
		generated, err := auth.GenerateOneTimePassword(OneTimePasswordLength)
		if err != nil {
			return nil, internal.NewInternalError("failed to generate credential", err)
		}
		password, oneTime = generated, generated
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	a := &Account{
		Username:          dto.Username,
		Email:             dto.Email,
		FirstName:         dto.FirstName,
		LastName:          dto.LastName,
		Phone:             dto.Phone,
		Role:              role,
		IsActive:          true,
		MustResetPassword: oneTime != "",
		PersonnelID:       dto.PersonnelID,
	}
	if err := s.repo.Create(ctx, a, hash); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return nil, internal.NewConflictError("username or personnel link already in use", internal.ErrCodeDuplicateValue)
		}
		s.logger.ErrorContext(ctx, "failed to create account", "username", dto.Username, "error", err)
		return nil, internal.NewInternalError("failed to create account", err)
	}

	s.logger.InfoContext(ctx, "account created", "account_id", a.ID, "role", a.Role, "actor_id", actor.ID)
	return &Created{Account: a, OneTimePassword: oneTime}, nil
}

// ReassignRole changes the target's role. Administrators cannot lower their
// own role so the system always keeps the caller's access.
func (s *Service) ReassignRole(ctx context.Context, actor *auth.Actor, id int64, dto RoleDTO) (*Account, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityReassignRole); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role, _ := auth.ParseRole(dto.Role)
	if id == actor.ID && role != actor.Role {
		return nil, internal.ErrSelfDemotion
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, s.translate(err, id, "failed to update role")
	}
	s.logger.InfoContext(ctx, "role reassigned", "account_id", id, "role", role, "actor_id", actor.ID)
	return s.load(ctx, id)
}

// SetActive toggles the account. Accounts are never deleted.
func (s *Service) SetActive(ctx context.Context, actor *auth.Actor, id int64, dto ActiveDTO) (*Account, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityReassignRole); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if id == actor.ID && !*dto.Active {
		return nil, internal.ErrSelfDemotion
	}

	if err := s.repo.SetActive(ctx, id, *dto.Active); err != nil {
		return nil, s.translate(err, id, "failed to update account")
	}
	s.logger.InfoContext(ctx, "account activation changed", "account_id", id, "active", *dto.Active, "actor_id", actor.ID)
	return s.load(ctx, id)
}

// ResetPassword issues a new one-time credential for the target account and
// forces a change on next use. The clear text is returned only here.
func (s *Service) ResetPassword(ctx context.Context, actor *auth.Actor, id int64) (*Reset, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityReassignRole); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	password, err := auth.GenerateOneTimePassword(OneTimePasswordLength)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate credential", err)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.ResetPassword(ctx, id, hash); err != nil {
		return nil, s.translate(err, id, "failed to reset password")
	}

	s.logger.InfoContext(ctx, "password reset issued", "account_id", id, "actor_id", actor.ID)
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Reset{Account: a, OneTimePassword: password}, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "failed to load account")
	}
	return a, nil
}

func (s *Service) translate(err error, id int64, message string) error {
	if errors.Is(err, ErrAccountNotFound) {
		return internal.NewNotFoundError("account", id)
	}
	return internal.NewInternalError(message, err)
}
