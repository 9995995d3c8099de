package kardex

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/personnel-records/internal/core/events"
)

type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// Subscribe registers the handlers that turn domain events into ledger
// entries.
func (r *Recorder) Subscribe(bus Subscriber) {
	bus.Subscribe(events.EventTypePersonnelCreated, r.onPersonnelCreated)
	bus.Subscribe(events.EventTypePersonnelUpdated, r.onPersonnelUpdated)
	bus.Subscribe(events.EventTypeLeaveApproved, r.onLeaveApproved)
	bus.Subscribe(events.EventTypeSanctionRecorded, r.onSanctionRecorded)
	bus.Subscribe(events.EventTypeCommendationRecorded, r.onCommendationRecorded)
}

func (r *Recorder) onPersonnelCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PersonnelCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	var eventDate time.Time
	if e.HireDate != nil {
		eventDate = *e.HireDate
	}
	return r.appendSystem(ctx, e.PersonnelID, e.ActorID, AppendInput{
		EntryType:   EntryOnboarding,
		EventDate:   eventDate,
		Description: "Alta en la institución",
		Snapshot:    &Snapshot{After: e.Placement},
	})
}

// onPersonnelUpdated writes one entry per changed aspect of the placement.
func (r *Recorder) onPersonnelUpdated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PersonnelUpdatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	snapshot := &Snapshot{Before: e.Before, After: e.After}
	changes := []struct {
		changed     bool
		entryType   EntryType
		description string
	}{
		{!sameID(e.Before.RankID, e.After.RankID), EntryPromotion, "Cambio de grado"},
		{!sameID(e.Before.UnitID, e.After.UnitID), EntryTransfer, "Traslado de unidad"},
		{!sameID(e.Before.StatusID, e.After.StatusID), EntryStatusChange, "Cambio de estado"},
	}

	for _, c := range changes {
		if !c.changed {
			continue
		}
		err := r.appendSystem(ctx, e.PersonnelID, e.ActorID, AppendInput{
			EntryType:   c.entryType,
			EventDate:   e.OccurredAt(),
			Description: c.description,
			Snapshot:    snapshot,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) onLeaveApproved(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	return r.appendSystem(ctx, e.PersonnelID, e.ApproverID, AppendInput{
		EntryType: EntryLeave,
		EventDate: e.StartDate,
		Description: fmt.Sprintf("Permiso %s aprobado del %s al %s (%d días)",
			e.LeaveType, e.StartDate.Format(time.DateOnly), e.EndDate.Format(time.DateOnly), e.DurationDays),
	})
}

func (r *Recorder) onSanctionRecorded(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.RecordEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	return r.appendSystem(ctx, e.PersonnelID, e.ActorID, AppendInput{
		EntryType:   EntrySanction,
		EventDate:   e.Date,
		Description: fmt.Sprintf("Sanción: %s. %s", e.TypeName, e.Reason),
	})
}

func (r *Recorder) onCommendationRecorded(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.RecordEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	return r.appendSystem(ctx, e.PersonnelID, e.ActorID, AppendInput{
		EntryType:   EntryCommendation,
		EventDate:   e.Date,
		Description: fmt.Sprintf("Felicitación: %s. %s", e.TypeName, e.Reason),
	})
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
