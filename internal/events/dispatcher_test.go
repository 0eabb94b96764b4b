package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []EventType
	d.Subscribe(EventRequestSubmitted, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventRequestStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventRequestSubmitted, RequestID: 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 1 || got[0] != EventRequestSubmitted {
		t.Fatalf("delivered = %v", got)
	}
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()

	var called bool
	d.Subscribe(EventRequestAssigned, func(context.Context, Event) error {
		return errors.New("handler failed")
	})
	d.Subscribe(EventRequestAssigned, func(context.Context, Event) error {
		called = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventRequestAssigned}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !called {
		t.Fatal("second handler not invoked after first errored")
	}
}
