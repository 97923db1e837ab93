package buildpipeline

import (
	"testing"
	"time"
)

func TestTimingsAccumulate(t *testing.T) {
	var tm Timings
	tm.Add(StageSynth, 2*time.Millisecond)
	tm.Add(StageSynth, 3*time.Millisecond)
	tm.Add(StageEmit, time.Millisecond)

	if !tm.Has(StageSynth) || tm.Has(StageWrite) {
		t.Error("unexpected Has results")
	}
	if got := tm.Duration(StageSynth); got != 5*time.Millisecond {
		t.Errorf("expected 5ms, got %s", got)
	}
	if got := tm.Sum(StageSynth, StageEmit, StageWrite); got != 6*time.Millisecond {
		t.Errorf("expected 6ms, got %s", got)
	}
}

func TestQueuedAndReport(t *testing.T) {
	var rec RecordingSink
	Queued(&rec, []string{"ui.A", "ui.B"})
	Report(&rec, "ui.A", StageEmit, StatusDone, nil, 0)
	Report(nil, "ui.A", StageEmit, StatusDone, nil, 0)

	events := rec.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Container != "ui.B" || events[1].Status != StatusQueued {
		t.Errorf("unexpected queued event: %+v", events[1])
	}
	if events[2].Stage != StageEmit || events[2].Status != StatusDone {
		t.Errorf("unexpected report event: %+v", events[2])
	}
}
