package events

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type pingEvent struct{ BaseEvent }

func (pingEvent) EventName() string { return "test.ping" }

type recordingHandler struct {
	mu    sync.Mutex
	seen  int
	err   error
	calls chan struct{}
}

func (h *recordingHandler) Handle(context.Context, Event) error {
	h.mu.Lock()
	h.seen++
	h.mu.Unlock()
	if h.calls != nil {
		h.calls <- struct{}{}
	}
	return h.err
}

func TestPublishSyncStopsAtFirstError(t *testing.T) {
	bus := NewInMemoryBus(nil)
	failing := &recordingHandler{err: errors.New("boom")}
	after := &recordingHandler{}
	bus.Subscribe("test.ping", failing)
	bus.Subscribe("test.ping", after)

	err := bus.PublishSync(context.Background(), pingEvent{NewBaseEvent()})
	if err == nil || !errors.Is(err, failing.err) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if after.seen != 0 {
		t.Fatal("handlers after a failure must not run")
	}
}

func TestPublishDeliversAsynchronously(t *testing.T) {
	bus := NewInMemoryBus(nil)
	h := &recordingHandler{calls: make(chan struct{}, 1)}
	bus.Subscribe("test.ping", h)
	bus.Subscribe("other", &recordingHandler{err: errors.New("must not run")})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pingEvent{NewBaseEvent()})
	cancel()

	<-h.calls
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seen != 1 {
		t.Fatalf("expected one delivery, got %d", h.seen)
	}
}
