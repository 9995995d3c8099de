package kardex

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/catalog"
	"github.com/frahmantamala/personnel-records/internal/core/events"
)

var ErrEntryNotFound = errors.New("kardex entry not found")

// Repository is append-only: entries are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	ListByPersonnel(ctx context.Context, personnelID int64) ([]*Entry, error)
	GetByID(ctx context.Context, id int64) (*Entry, error)
}

type PersonnelChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Recorder struct {
	repo      Repository
	personnel PersonnelChecker
	refs      catalog.ReferenceChecker
	guard     auth.Authorizer
	logger    *slog.Logger
	now       func() time.Time
}

func NewRecorder(repo Repository, personnel PersonnelChecker, refs catalog.ReferenceChecker, guard auth.Authorizer, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:      repo,
		personnel: personnel,
		refs:      refs,
		guard:     guard,
		logger:    logger,
		now:       time.Now,
	}
}

// Append adds an entry authored by actor. Corrections are new entries.
func (r *Recorder) Append(ctx context.Context, actor *auth.Actor, personnelID int64, input AppendInput) (*Entry, error) {
	if err := r.guard.Authorize(ctx, actor, auth.CapabilityCreateRecord); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := r.requirePersonnel(ctx, personnelID); err != nil {
		return nil, err
	}
	if input.Snapshot != nil {
		if err := r.checkPlacement(ctx, input.Snapshot.Before); err != nil {
			return nil, err
		}
		if err := r.checkPlacement(ctx, input.Snapshot.After); err != nil {
			return nil, err
		}
	}

	entry := newEntry(personnelID, actor.ID, input)
	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "failed to append kardex entry", "personnel_id", personnelID, "error", err)
		return nil, internal.NewInternalError("failed to append kardex entry", err)
	}

	r.logger.InfoContext(ctx, "kardex entry appended",
		"entry_id", entry.ID,
		"personnel_id", personnelID,
		"entry_type", entry.EntryType,
		"actor_id", actor.ID)
	return entry, nil
}

// List returns entries newest first by event date, then creation time.
func (r *Recorder) List(ctx context.Context, actor *auth.Actor, personnelID int64) ([]*Entry, error) {
	if err := r.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	if err := r.requirePersonnel(ctx, personnelID); err != nil {
		return nil, err
	}
	entries, err := r.repo.ListByPersonnel(ctx, personnelID)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to list kardex", "personnel_id", personnelID, "error", err)
		return nil, internal.NewInternalError("failed to list kardex", err)
	}
	return entries, nil
}

// Get returns one entry. It fails with NotFound when the entry belongs to a
// different personnel record.
func (r *Recorder) Get(ctx context.Context, actor *auth.Actor, personnelID, id int64) (*Entry, error) {
	if err := r.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	entry, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, internal.NewNotFoundError("kardex entry", id)
		}
		return nil, internal.NewInternalError("failed to load kardex entry", err)
	}
	if entry.PersonnelID != personnelID {
		return nil, internal.NewNotFoundError("kardex entry", id)
	}
	return entry, nil
}

// appendSystem writes an entry on behalf of a domain event. The authoring
// actor was already authorized by the operation that raised the event.
func (r *Recorder) appendSystem(ctx context.Context, personnelID, recordedBy int64, input AppendInput) error {
	if input.EventDate.IsZero() {
		input.EventDate = r.now()
	}
	entry := newEntry(personnelID, recordedBy, input)
	if err := r.repo.Create(ctx, entry); err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "kardex entry recorded from event",
		"entry_id", entry.ID,
		"personnel_id", personnelID,
		"entry_type", entry.EntryType)
	return nil
}

func (r *Recorder) checkPlacement(ctx context.Context, p events.Placement) error {
	if err := catalog.RequireReference(ctx, r.refs, catalog.KindRank, p.RankID); err != nil {
		return err
	}
	if err := catalog.RequireReference(ctx, r.refs, catalog.KindUnit, p.UnitID); err != nil {
		return err
	}
	return catalog.RequireReference(ctx, r.refs, catalog.KindStatusType, p.StatusID)
}

func (r *Recorder) requirePersonnel(ctx context.Context, personnelID int64) error {
	ok, err := r.personnel.Exists(ctx, personnelID)
	if err != nil {
		return internal.NewInternalError("failed to load personnel", err)
	}
	if !ok {
		return internal.NewNotFoundError("personnel", personnelID)
	}
	return nil
}
