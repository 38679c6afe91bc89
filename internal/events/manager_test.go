package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/hibiken/asynq"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	_, store := newTestStore(t, 10)
	return &Manager{store: store, logger: log.New(io.Discard, "", 0)}
}

func activityTask(t *testing.T, event Event) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return asynq.NewTask(taskTypeActivity, body)
}

func TestHandleActivityTaskRecords(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	event := Event{ID: "e1", Type: TypeTaskStatusChanged, TaskID: 3, ActorEmail: "b@x.com", Details: map[string]any{"status": "COMPLETED"}}
	if err := m.handleActivityTask(ctx, activityTask(t, event)); err != nil {
		t.Fatalf("handleActivityTask returned error: %v", err)
	}

	events, err := m.List(ctx, 3, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(events) != 1 || events[0].Type != TypeTaskStatusChanged || events[0].Details["status"] != "COMPLETED" {
		t.Fatalf("unexpected events: %#v", events)
	}
}

func TestHandleActivityTaskDeletedClearsFeed(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if err := m.handleActivityTask(ctx, activityTask(t, Event{Type: TypeTaskCreated, TaskID: 5})); err != nil {
		t.Fatalf("handleActivityTask returned error: %v", err)
	}
	if err := m.handleActivityTask(ctx, activityTask(t, Event{Type: TypeTaskDeleted, TaskID: 5})); err != nil {
		t.Fatalf("handleActivityTask returned error: %v", err)
	}
	if events, _ := m.List(ctx, 5, 0); len(events) != 0 {
		t.Fatalf("expected empty feed after delete, got %#v", events)
	}
}

func TestHandleActivityTaskSkipsBrokenPayload(t *testing.T) {
	m := newTestManager(t)

	err := m.handleActivityTask(context.Background(), asynq.NewTask(taskTypeActivity, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	err = m.handleActivityTask(context.Background(), activityTask(t, Event{Type: TypeTaskCreated}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry without task id, got %v", err)
	}
}

func TestDiscardPublisher(t *testing.T) {
	var p Publisher = Discard{}
	if err := p.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("Discard.Publish returned error: %v", err)
	}
}
