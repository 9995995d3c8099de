package leave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/core/events"
	"github.com/frahmantamala/personnel-records/internal/metrics"
)

var ErrRequestNotFound = errors.New("leave request not found")

const entity = "leave request"

type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id int64) (*Request, error)
	List(ctx context.Context, filter Filter) ([]*Request, error)
	// UpdatePending rewrites the editable fields only while the request is
	// still pending. It reports whether a row was changed.
	UpdatePending(ctx context.Context, req *Request) (bool, error)
	// Transition moves a request out of from. It reports false when the
	// stored status no longer equals from.
	Transition(ctx context.Context, id int64, from Status, t Transition) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type PersonnelChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo      Repository
	personnel PersonnelChecker
	guard     auth.Authorizer
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, personnel PersonnelChecker, guard auth.Authorizer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		personnel: personnel,
		guard:     guard,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit creates a pending request.
func (s *Service) Submit(ctx context.Context, actor *auth.Actor, dto SubmitDTO) (*Request, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityCreateRecord); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.personnel.Exists(ctx, dto.PersonnelID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load personnel", err)
	}
	if !exists {
		return nil, internal.NewNotFoundError("personnel", dto.PersonnelID)
	}

	req := &Request{
		PersonnelID:       dto.PersonnelID,
		LeaveType:         dto.LeaveType,
		Motive:            dto.Motive,
		ReferenceDocument: dto.ReferenceDocument,
		Status:            StatusPending,
		CreatedBy:         actor.ID,
	}
	req.SetDates(dto.StartDate, dto.EndDate)

	if err := s.repo.Create(ctx, req); err != nil {
		s.logger.ErrorContext(ctx, "failed to create leave request", "personnel_id", dto.PersonnelID, "error", err)
		return nil, internal.NewInternalError("failed to create leave request", err)
	}

	metrics.LeaveTransitions.WithLabelValues(string(StatusPending)).Inc()
	s.logger.InfoContext(ctx, "leave request submitted",
		"request_id", req.ID,
		"personnel_id", req.PersonnelID,
		"duration_days", req.DurationDays,
		"actor_id", actor.ID)
	return req, nil
}

// Decide approves or rejects a pending request. The state check runs before
// the capability check so a settled request reports InvalidTransition to
// every caller. The body is validated only once the caller may decide.
func (s *Service) Decide(ctx context.Context, actor *auth.Actor, id int64, dto DecideDTO) (*Request, error) {
	if !actor.Authenticated() {
		return nil, s.guard.Authorize(ctx, actor, auth.CapabilityApproveLeave)
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, s.invalidTransition(ctx, req, string(dto.Outcome))
	}
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityApproveLeave); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	to := dto.Outcome.status()

	t := Transition{
		To:        to,
		DecidedBy: actor.ID,
		DecidedAt: s.now(),
		Notes:     dto.Notes,
	}
	if to == StatusApproved {
		approver := actor.ID
		t.ApproverID = &approver
	}

	decided, err := s.transition(ctx, req, t)
	if err != nil {
		return nil, err
	}

	if decided.Status == StatusApproved {
		event := events.NewLeaveApprovedEvent(events.LeaveApprovedEvent{
			RequestID:    decided.ID,
			PersonnelID:  decided.PersonnelID,
			ApproverID:   actor.ID,
			LeaveType:    string(decided.LeaveType),
			StartDate:    decided.StartDate,
			EndDate:      decided.EndDate,
			DurationDays: decided.DurationDays,
			DecidedAt:    t.DecidedAt,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish leave.approved", "request_id", decided.ID, "error", err)
		}
	}
	return decided, nil
}

// Cancel withdraws a pending request.
func (s *Service) Cancel(ctx context.Context, actor *auth.Actor, id int64) (*Request, error) {
	if !actor.Authenticated() {
		return nil, s.guard.Authorize(ctx, actor, auth.CapabilityEditRecord)
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, s.invalidTransition(ctx, req, string(StatusCancelled))
	}
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityEditRecord); err != nil {
		return nil, err
	}

	return s.transition(ctx, req, Transition{
		To:        StatusCancelled,
		DecidedBy: actor.ID,
		DecidedAt: s.now(),
	})
}

// Update edits type, dates and motive while the request is pending.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateDTO) (*Request, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityEditRecord); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, s.invalidTransition(ctx, req, attemptEdit)
	}

	req.LeaveType = dto.LeaveType
	req.Motive = dto.Motive
	req.ReferenceDocument = dto.ReferenceDocument
	req.SetDates(dto.StartDate, dto.EndDate)

	updated, err := s.repo.UpdatePending(ctx, req)
	if err != nil {
		return nil, internal.NewInternalError("failed to update leave request", err)
	}
	if !updated {
		return nil, s.reloadConflict(ctx, id, attemptEdit)
	}

	s.logger.InfoContext(ctx, "leave request updated", "request_id", id, "actor_id", actor.ID)
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Request, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list leave requests", "error", err)
		return nil, internal.NewInternalError("failed to list leave requests", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Request, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return internal.NewNotFoundError(entity, id)
		}
		return internal.NewInternalError("failed to delete leave request", err)
	}
	s.logger.InfoContext(ctx, "leave request deleted", "request_id", id, "actor_id", actor.ID)
	return nil
}

// transition applies t with compare-and-swap on the pending status. Losing
// the race surfaces InvalidTransition against the status that won.
func (s *Service) transition(ctx context.Context, req *Request, t Transition) (*Request, error) {
	swapped, err := s.repo.Transition(ctx, req.ID, StatusPending, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to apply leave transition", "request_id", req.ID, "to", t.To, "error", err)
		return nil, internal.NewInternalError("failed to update leave request", err)
	}
	if !swapped {
		return nil, s.reloadConflict(ctx, req.ID, string(t.To))
	}

	metrics.LeaveTransitions.WithLabelValues(string(t.To)).Inc()
	s.logger.InfoContext(ctx, "leave request transitioned",
		"request_id", req.ID,
		"from", StatusPending,
		"to", t.To,
		"actor_id", t.DecidedBy)
	return s.load(ctx, req.ID)
}

func (s *Service) reloadConflict(ctx context.Context, id int64, attempted string) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return s.invalidTransition(ctx, current, attempted)
}

// attemptEdit labels a refused edit in transition errors.
const attemptEdit = "edit"

func (s *Service) invalidTransition(ctx context.Context, req *Request, attempted string) error {
	s.logger.WarnContext(ctx, "leave transition rejected",
		"request_id", req.ID,
		"from", req.Status,
		"attempted", attempted)
	return internal.NewInvalidTransitionError(string(req.Status), attempted)
}

func (s *Service) load(ctx context.Context, id int64) (*Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			return nil, internal.NewNotFoundError(entity, id)
		}
		return nil, internal.NewInternalError("failed to load leave request", err)
	}
	return req, nil
}
