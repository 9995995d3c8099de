package provisioning

import (
	"context"
	"fmt"

	"github.com/frahmantamala/personnel-records/internal/core/events"
)

type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// Subscribe queues provisioning for every new personnel record. A full
// queue is reported to the bus, which logs it; personnel creation is
// unaffected.
func (p *Pool) Subscribe(bus Subscriber) {
	bus.Subscribe(events.EventTypePersonnelCreated, p.onPersonnelCreated)
}

func (p *Pool) onPersonnelCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.PersonnelCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	err := p.Submit(Job{Candidate: Candidate{
		PersonnelID:        created.PersonnelID,
		IDDocument:         created.IDDocument,
		FirstNames:         created.FirstNames,
		LastNames:          created.LastNames,
		Phone:              created.Phone,
		InstitutionalEmail: created.InstitutionalEmail,
	}})
	if err != nil {
		return fmt.Errorf("queue provisioning for personnel %d: %w", created.PersonnelID, err)
	}
	return nil
}
