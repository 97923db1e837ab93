package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"bindsadapter/internal/buildpipeline"
)

func TestRunTags(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	if err := runTags(cmd, []string{"MyViewHolder1", "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "MyViewHolder1  TYPE_MY_VIEW_HOLDER1 = 0\n" +
		"A              TYPE_A = 1\n"
	if out.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, out.String())
	}
	if errOut.Len() != 0 {
		t.Errorf("expected no stderr output, got %q", errOut.String())
	}
}

func TestRunTagsCollision(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := runTags(cmd, []string{"FooBar", "Foo_bar"})
	if err == nil {
		t.Fatal("expected an error for colliding names")
	}
	if !strings.Contains(errOut.String(), "duplicate tag TYPE_FOO_BAR: FooBar, Foo_bar") {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q): expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Error("explicit modes must not depend on the terminal")
	}
}

func TestPrintStageTimings(t *testing.T) {
	var timings buildpipeline.Timings
	timings.Add(buildpipeline.StageSynth, 2*time.Millisecond)
	timings.Add(buildpipeline.StageEmit, 500*time.Microsecond)

	var buf bytes.Buffer
	printStageTimings(&buf, timings)
	want := "resolved 2.0 ms\nemitted 0.5 ms\ngenerated 2.5 ms\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	printStageTimings(&buf, buildpipeline.Timings{})
	if buf.Len() != 0 {
		t.Errorf("expected nothing for empty timings, got %q", buf.String())
	}
}

func TestConfigureLogging(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := configureLogging(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("loaded", "containers", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record must be filtered at info level: %s", out)
	}
	if !strings.Contains(out, `"msg":"loaded"`) || !strings.Contains(out, `"containers":2`) {
		t.Errorf("unexpected JSON log: %s", out)
	}
	if strings.Contains(out, "session") {
		t.Errorf("no tracer in context, expected no session attr: %s", out)
	}
	if parseLogLevel("bogus") != slog.LevelWarn {
		t.Error("unknown levels fall back to warn")
	}
}
