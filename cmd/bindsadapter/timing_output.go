package main

import (
	"fmt"
	"io"
	"time"

	"bindsadapter/internal/buildpipeline"
)

// printStageTimings prints the summed per-stage durations. Synth and emit
// times are added up over containers, so with jobs > 1 they can exceed the
// wall time.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, st := range []struct {
		stage buildpipeline.Stage
		label string
	}{
		{buildpipeline.StageSynth, "resolved"},
		{buildpipeline.StageEmit, "emitted"},
	} {
		if timings.Has(st.stage) {
			fmt.Fprintf(out, "%s %.1f ms\n", st.label, toMillis(timings.Duration(st.stage)))
		}
	}
	if timings.Has(buildpipeline.StageSynth) || timings.Has(buildpipeline.StageEmit) {
		total := timings.Sum(buildpipeline.StageSynth, buildpipeline.StageEmit)
		fmt.Fprintf(out, "generated %.1f ms\n", toMillis(total))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
