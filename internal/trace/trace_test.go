package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"off": LevelOff, "RUN": LevelRun, "stage": LevelStage, "debug": LevelContainer}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q): expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	if LevelStage.ShouldEmit(ScopeContainer) {
		t.Error("stage level must not emit container scope")
	}
	if !LevelStage.ShouldEmit(ScopeRun) || !LevelContainer.ShouldEmit(ScopeContainer) {
		t.Error("expected coarser scopes to be emitted")
	}
	if LevelOff.ShouldEmit(ScopeRun) {
		t.Error("off must emit nothing")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelContainer, Mode: ModeStream, Format: FormatNDJSON, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(tr.Session()); err != nil {
		t.Errorf("expected a UUID session, got %q", tr.Session())
	}

	ctx := WithTracer(context.Background(), tr)
	ctx, run := Start(ctx, ScopeRun, "gen")
	_, c := Start(ctx, ScopeContainer, "container:ui.MyAdapter")
	c.WithExtra("variants", "2").End("")
	run.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	var ev struct {
		Session  string            `json:"session"`
		Kind     string            `json:"kind"`
		ParentID uint64            `json:"parent_id"`
		Extra    map[string]string `json:"extra"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.ParentID != run.ID() || ev.Extra["variants"] != "2" {
		t.Errorf("unexpected container end event: %+v", ev)
	}
	if ev.Session != tr.Session() {
		t.Errorf("expected session %q, got %q", tr.Session(), ev.Session)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelRun, "s")
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeRun, name, "", 0)
	}
	events := r.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Errorf("expected [b c], got %+v", events)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "• c") {
		t.Errorf("unexpected dump:\n%s", buf.String())
	}
}

func TestDisabledTracing(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Error("expected nop tracer")
	}
	span := Begin(tr, ScopeRun, "x", 7)
	if span.ID() != 7 || span.End("") != 0 {
		t.Error("disabled span must pass through its parent id")
	}
}
