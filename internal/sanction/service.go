package sanction

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/catalog"
	"github.com/frahmantamala/personnel-records/internal/core/events"
)

var ErrRecordNotFound = errors.New("sanction not found")

const entity = "sanction"

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id int64) error
}

type PersonnelChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Service gates every read and write on manage_sanctions; sanctions are
// not visible to authorized users.
type Service struct {
	repo      Repository
	personnel PersonnelChecker
	names     catalog.NameResolver
	guard     auth.Authorizer
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, personnel PersonnelChecker, names catalog.NameResolver, guard auth.Authorizer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		personnel: personnel,
		names:     names,
		guard:     guard,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Record, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityManageSanctions); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list sanctions", "error", err)
		return nil, internal.NewInternalError("failed to list sanctions", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Record, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityManageSanctions); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, input Input) (*Record, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityManageSanctions); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	typeName, err := s.checkReferences(ctx, input)
	if err != nil {
		return nil, err
	}

	record := &Record{RecordedBy: actor.ID}
	record.apply(input)
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to create sanction", "personnel_id", input.PersonnelID, "error", err)
		return nil, internal.NewInternalError("failed to create sanction", err)
	}

	s.logger.InfoContext(ctx, "sanction recorded",
		"sanction_id", record.ID,
		"personnel_id", record.PersonnelID,
		"actor_id", actor.ID)

	event := events.NewSanctionRecordedEvent(events.RecordEvent{
		RecordID:    record.ID,
		PersonnelID: record.PersonnelID,
		ActorID:     actor.ID,
		TypeName:    typeName,
		Date:        record.SanctionDate,
		Reason:      record.Reason,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish sanction.recorded", "sanction_id", record.ID, "error", err)
	}
	return record, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, input Input) (*Record, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityManageSanctions); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.checkReferences(ctx, input); err != nil {
		return nil, err
	}

	record.apply(input)
	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, internal.NewNotFoundError(entity, id)
		}
		return nil, internal.NewInternalError("failed to update sanction", err)
	}
	s.logger.InfoContext(ctx, "sanction updated", "sanction_id", id, "status", record.Status, "actor_id", actor.ID)
	return s.load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return internal.NewNotFoundError(entity, id)
		}
		return internal.NewInternalError("failed to delete sanction", err)
	}
	s.logger.InfoContext(ctx, "sanction deleted", "sanction_id", id, "actor_id", actor.ID)
	return nil
}

func (s *Service) checkReferences(ctx context.Context, input Input) (string, error) {
	ok, err := s.personnel.Exists(ctx, input.PersonnelID)
	if err != nil {
		return "", internal.NewInternalError("failed to load personnel", err)
	}
	if !ok {
		return "", internal.NewNotFoundError("personnel", input.PersonnelID)
	}
	return catalog.ResolveName(ctx, s.names, catalog.KindSanctionType, input.SanctionTypeID)
}

func (s *Service) load(ctx context.Context, id int64) (*Record, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, internal.NewNotFoundError(entity, id)
		}
		return nil, internal.NewInternalError("failed to load sanction", err)
	}
	return record, nil
}
