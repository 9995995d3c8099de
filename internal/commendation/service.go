package commendation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/catalog"
	"github.com/frahmantamala/personnel-records/internal/core/events"
)

var ErrRecordNotFound = errors.New("commendation not found")

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
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list commendations", "error", err)
		return nil, internal.NewInternalError("failed to list commendations", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Record, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, input Input) (*Record, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityCreateRecord); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	typeName, err := s.checkReferences(ctx, input)
	if err != nil {
		return nil, err
	}

	record := &Record{
		PersonnelID:        input.PersonnelID,
		CommendationTypeID: input.CommendationTypeID,
		CommendationDate:   input.CommendationDate,
		Reason:             input.Reason,
		ReferenceDocument:  input.ReferenceDocument,
		Notes:              input.Notes,
		RecordedBy:         actor.ID,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to create commendation", "personnel_id", input.PersonnelID, "error", err)
		return nil, internal.NewInternalError("failed to create commendation", err)
	}

	s.logger.InfoContext(ctx, "commendation recorded",
		"commendation_id", record.ID,
		"personnel_id", record.PersonnelID,
		"actor_id", actor.ID)

	event := events.NewCommendationRecordedEvent(events.RecordEvent{
		RecordID:    record.ID,
		PersonnelID: record.PersonnelID,
		ActorID:     actor.ID,
		TypeName:    typeName,
		Date:        record.CommendationDate,
		Reason:      record.Reason,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish commendation.recorded", "commendation_id", record.ID, "error", err)
	}
	return record, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, input Input) (*Record, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityEditRecord); err != nil {
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

	record.PersonnelID = input.PersonnelID
	record.CommendationTypeID = input.CommendationTypeID
	record.CommendationDate = input.CommendationDate
	record.Reason = input.Reason
	record.ReferenceDocument = input.ReferenceDocument
	record.Notes = input.Notes
	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("commendation", id)
		}
		return nil, internal.NewInternalError("failed to update commendation", err)
	}
	s.logger.InfoContext(ctx, "commendation updated", "commendation_id", id, "actor_id", actor.ID)
	return s.load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return internal.NewNotFoundError("commendation", id)
		}
		return internal.NewInternalError("failed to delete commendation", err)
	}
	s.logger.InfoContext(ctx, "commendation deleted", "commendation_id", id, "actor_id", actor.ID)
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
	return catalog.ResolveName(ctx, s.names, catalog.KindCommendationType, input.CommendationTypeID)
}

func (s *Service) load(ctx context.Context, id int64) (*Record, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("commendation", id)
		}
		return nil, internal.NewInternalError("failed to load commendation", err)
	}
	return record, nil
}
