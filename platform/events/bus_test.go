package events

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
}

func (testEvent) EventName() string { return "test.event" }

func TestPublishSurvivesCallerCancellation(t *testing.T) {
	bus := NewInMemoryBus(nil)

	release := make(chan struct{})
	got := make(chan error, 1)
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, _ Event) error {
		<-release
		got <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{NewBaseEvent()})
	cancel()
	close(release)

	select {
	case err := <-got:
		if err != nil {
			t.Fatalf("handler saw a dead context: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return errors.New("first failed")
	}))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return errors.New("third failed")
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent()})
	if err == nil {
		t.Fatal("expected joined error")
	}
	for _, want := range []string{"first failed", "third failed"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("joined error %q missing %q", err.Error(), want)
		}
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	bus.Publish(context.Background(), testEvent{NewBaseEvent()})

	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent()}); err != nil {
		t.Fatalf("no subscribers: %v", err)
	}
}
