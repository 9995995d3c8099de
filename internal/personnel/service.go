package personnel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/catalog"
	"github.com/frahmantamala/personnel-records/internal/core/events"
)

var (
	ErrPersonnelNotFound  = errors.New("personnel not found")
	ErrDuplicatePersonnel = errors.New("personnel code or id document already registered")
)

const entity = "personnel"

type RepositoryAPI interface {
	List(ctx context.Context, filter Filter) ([]*Personnel, error)
	GetByID(ctx context.Context, id int64) (*Personnel, error)
	Create(ctx context.Context, p *Personnel) error
	Update(ctx context.Context, p *Personnel) error
	Delete(ctx context.Context, id int64) error
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	ExistsByIDDocument(ctx context.Context, idDocument string, excludeID int64) (bool, error)
}

type Service struct {
	repo      RepositoryAPI
	refs      catalog.ReferenceChecker
	guard     auth.Authorizer
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, refs catalog.ReferenceChecker, guard auth.Authorizer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		refs:      refs,
		guard:     guard,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Personnel, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list personnel", "error", err)
		return nil, internal.NewInternalError("failed to list personnel", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Personnel, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Exists is the lookup other modules use before attaching a record to a
// personnel id. It performs no authorization.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrPersonnelNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Create stores a new personnel record and publishes personnel.created.
// Subscribers (ledger onboarding, account provisioning) never fail the
// creation.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, input PersonnelInput) (*Personnel, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityCreateRecord); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p := &Personnel{IsActive: true}
	p.Apply(input)
	if err := s.checkReferences(ctx, p); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, p, 0); err != nil {
		return nil, err
	}
	createdBy := actor.ID
	p.CreatedBy = &createdBy

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, s.translate(ctx, err, 0)
	}

	s.logger.InfoContext(ctx, "personnel created",
		"personnel_id", p.ID,
		"code", p.Code,
		"actor_id", actor.ID)

	event := events.NewPersonnelCreatedEvent(events.PersonnelCreatedEvent{
		PersonnelID:        p.ID,
		ActorID:            actor.ID,
		IDDocument:         p.IDDocument,
		FirstNames:         p.FirstNames,
		LastNames:          p.LastNames(),
		Phone:              p.Phone,
		InstitutionalEmail: p.InstitutionalEmail,
		Placement:          p.Placement(),
		HireDate:           p.HireDate,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish personnel.created", "personnel_id", p.ID, "error", err)
	}

	return p, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, input PersonnelInput) (*Personnel, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityEditRecord); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := p.Placement()

	p.Apply(input)
	if err := s.checkReferences(ctx, p); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, p, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, s.translate(ctx, err, id)
	}

	s.logger.InfoContext(ctx, "personnel updated", "personnel_id", id, "actor_id", actor.ID)

	event := events.NewPersonnelUpdatedEvent(id, actor.ID, before, p.Placement())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish personnel.updated", "personnel_id", id, "error", err)
	}

	return s.load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(ctx, err, id)
	}
	s.logger.InfoContext(ctx, "personnel deleted", "personnel_id", id, "actor_id", actor.ID)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Personnel, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, err, id)
	}
	return p, nil
}

func (s *Service) checkReferences(ctx context.Context, p *Personnel) error {
	if err := catalog.RequireReference(ctx, s.refs, catalog.KindRank, p.RankID); err != nil {
		return err
	}
	if err := catalog.RequireReference(ctx, s.refs, catalog.KindUnit, p.UnitID); err != nil {
		return err
	}
	return catalog.RequireReference(ctx, s.refs, catalog.KindStatusType, p.StatusID)
}

func (s *Service) checkUnique(ctx context.Context, p *Personnel, excludeID int64) error {
	taken, err := s.repo.ExistsByCode(ctx, p.Code, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check personnel code", err)
	}
	if taken {
		return internal.NewConflictError("code is already registered", internal.ErrCodeDuplicateIdentity).
			WithDetails(map[string]string{"field": "code"})
	}

	taken, err = s.repo.ExistsByIDDocument(ctx, p.IDDocument, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check id document", err)
	}
	if taken {
		return internal.NewConflictError("id document is already registered", internal.ErrCodeDuplicateIdentity).
			WithDetails(map[string]string{"field": "id_document"})
	}
	return nil
}

func (s *Service) translate(ctx context.Context, err error, id int64) error {
	switch {
	case errors.Is(err, ErrPersonnelNotFound):
		return internal.NewNotFoundError(entity, id)
	case errors.Is(err, ErrDuplicatePersonnel):
		return internal.NewConflictError(ErrDuplicatePersonnel.Error(), internal.ErrCodeDuplicateIdentity)
	}
	s.logger.ErrorContext(ctx, "personnel repository failure", "personnel_id", id, "error", err)
	return internal.NewInternalError("failed to access personnel", err)
}
