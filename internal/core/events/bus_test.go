package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/frahmantamala/personnel-records/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	event := events.BaseEvent{ID: "evt-1", Type: events.EventTypeLeaveApproved}

	It("delivers to every subscriber and waits for them", func() {
		var calls atomic.Int32
		handler := func(ctx context.Context, e events.Event) error {
			calls.Add(1)
			return nil
		}
		bus.Subscribe(events.EventTypeLeaveApproved, handler)
		bus.Subscribe(events.EventTypeLeaveApproved, handler)

		Expect(bus.Publish(context.Background(), event)).To(Succeed())
		bus.Wait()
		Expect(calls.Load()).To(Equal(int32(2)))
	})

	It("runs handlers after the publishing context is cancelled", func() {
		var seen atomic.Bool
		bus.Subscribe(events.EventTypeLeaveApproved, func(ctx context.Context, e events.Event) error {
			seen.Store(ctx.Err() == nil)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		Expect(bus.Publish(ctx, event)).To(Succeed())
		cancel()
		bus.Wait()
		Expect(seen.Load()).To(BeTrue())
	})

	It("ignores events nobody listens to", func() {
		Expect(bus.Publish(context.Background(), events.BaseEvent{ID: "x", Type: "unknown"})).To(Succeed())
		bus.Wait()
	})

	It("does not fail the publisher when a handler fails", func() {
		bus.Subscribe(events.EventTypeLeaveApproved, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})
		Expect(bus.Publish(context.Background(), event)).To(Succeed())
		bus.Wait()
	})

	It("contains a panicking handler", func() {
		var after atomic.Bool
		bus.Subscribe(events.EventTypeLeaveApproved, func(ctx context.Context, e events.Event) error {
			panic("bad subscriber")
		})
		bus.Subscribe(events.EventTypeLeaveApproved, func(ctx context.Context, e events.Event) error {
			after.Store(true)
			return nil
		})

		Expect(bus.Publish(context.Background(), event)).To(Succeed())
		bus.Wait()
		Expect(after.Load()).To(BeTrue())
	})
})
