package telemetry

import (
	"context"
	"errors"
	"testing"
)

type recordingSink struct {
	events []QuotesReceivedEvent
	err    error
}

func (r *recordingSink) Emit(_ context.Context, event QuotesReceivedEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMultiSinkDeliversToEverySink(t *testing.T) {
	failing := &recordingSink{err: errors.New("db down")}
	ok := &recordingSink{}
	sink := MultiSink{NewLogSink(), failing, ok}

	err := sink.Emit(context.Background(), QuotesReceivedEvent{ID: "evt-1", Version: SchemaVersion})
	if err == nil {
		t.Fatal("expected the failing sink's error")
	}
	if len(failing.events) != 1 || len(ok.events) != 1 {
		t.Fatalf("every sink should receive the event, got %d and %d", len(failing.events), len(ok.events))
	}
	if ok.events[0].ID != "evt-1" {
		t.Fatalf("unexpected event %+v", ok.events[0])
	}
}

func TestMultiSinkEmpty(t *testing.T) {
	if err := (MultiSink{}).Emit(context.Background(), QuotesReceivedEvent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
