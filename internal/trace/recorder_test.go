package trace

import (
	"context"
	"testing"

	"yesnt/internal/runtime"
)

func TestRecorder(t *testing.T) {
	r, err := Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	r.Observe(runtime.LineEvent{LineNumber: 1, Original: "<x = 1", Current: "<x = 1"})
	if err := r.Record(ctx, runtime.LineEvent{LineNumber: 2, TaskID: 3, IsTask: true, Original: "cwl >x", Current: "cwl 1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := r.Events(ctx, r.RunID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Seq != 2 || events[1].TaskID != 3 || events[1].Rewritten != "cwl 1" {
		t.Errorf("unexpected event %+v", events[1])
	}

	other, err := r.Events(ctx, "unknown")
	if err != nil || len(other) != 0 {
		t.Errorf("expected no events for another run, got %v %v", other, err)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}

func TestBindPostgres(t *testing.T) {
	r := &Recorder{driver: "postgres"}
	if got := r.bind("a = ? AND b = ?"); got != "a = $1 AND b = $2" {
		t.Errorf("unexpected query %q", got)
	}
	r.driver = "mysql"
	if got := r.bind("a = ?"); got != "a = ?" {
		t.Errorf("unexpected query %q", got)
	}
}
