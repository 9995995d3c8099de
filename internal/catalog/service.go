package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
)

var (
	ErrEntryNotFound  = errors.New("catalog entry not found")
	ErrDuplicateEntry = errors.New("catalog entry already exists")
	ErrEntryInUse     = errors.New("catalog entry is referenced")
)

type RepositoryAPI[T Entry] interface {
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, entry *T) error
	Update(ctx context.Context, id int64, entry *T) error
	Delete(ctx context.Context, id int64) error
}

// Service is the CRUD surface shared by every catalog table.
type Service[T Entry] struct {
	kind   Kind
	repo   RepositoryAPI[T]
	guard  auth.Authorizer
	logger *slog.Logger
}

func NewService[T Entry](kind Kind, repo RepositoryAPI[T], guard auth.Authorizer, logger *slog.Logger) *Service[T] {
	return &Service[T]{
		kind:   kind,
		repo:   repo,
		guard:  guard,
		logger: logger.With("catalog", kind.Path),
	}
}

func (s *Service[T]) Kind() Kind {
	return s.kind
}

func (s *Service[T]) List(ctx context.Context, actor *auth.Actor) ([]T, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	entries, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list catalog", "error", err)
		return nil, internal.NewInternalError("failed to list "+s.kind.Entity, err)
	}
	return entries, nil
}

func (s *Service[T]) Get(ctx context.Context, actor *auth.Actor, id int64) (*T, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, id)
	}
	return entry, nil
}

func (s *Service[T]) Create(ctx context.Context, actor *auth.Actor, entry *T) (*T, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityCreateRecord); err != nil {
		return nil, err
	}
	normalize(entry)
	if err := (*entry).Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, s.translate(ctx, err, 0)
	}
	s.logger.InfoContext(ctx, "catalog entry created", "actor_id", actor.ID)
	return entry, nil
}

func (s *Service[T]) Update(ctx context.Context, actor *auth.Actor, id int64, entry *T) (*T, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityEditRecord); err != nil {
		return nil, err
	}
	normalize(entry)
	if err := (*entry).Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, entry); err != nil {
		return nil, s.translate(ctx, err, id)
	}
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, id)
	}
	s.logger.InfoContext(ctx, "catalog entry updated", "actor_id", actor.ID, "id", id)
	return updated, nil
}

func (s *Service[T]) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(ctx, err, id)
	}
	s.logger.InfoContext(ctx, "catalog entry deleted", "actor_id", actor.ID, "id", id)
	return nil
}

func (s *Service[T]) translate(ctx context.Context, err error, id int64) error {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return internal.NewNotFoundError(s.kind.Entity, id)
	case errors.Is(err, ErrDuplicateEntry):
		return internal.NewConflictError(s.kind.Entity+" already exists", internal.ErrCodeDuplicateValue)
	case errors.Is(err, ErrEntryInUse):
		return internal.NewConflictError(s.kind.Entity+" is still referenced", internal.ErrCodeInUse)
	}
	s.logger.ErrorContext(ctx, "catalog repository failure", "id", id, "error", err)
	return internal.NewInternalError("failed to access "+s.kind.Entity, err)
}
