package buildpipeline

import "time"

// Stage describes a high-level generation phase.
type Stage string

const (
	// StageScan is declaration discovery (packages, manifests, snapshots).
	StageScan Stage = "scan"
	// StageSynth resolves roles and builds the tag table and both dispatches.
	StageSynth Stage = "synth"
	// StageEmit renders the Go source.
	StageEmit Stage = "emit"
	// StageWrite stores (or compares) the generated file.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusSkipped means the container produced no file.
	StatusSkipped Status = "skipped"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a container (or for the whole run when
// Container is empty).
type Event struct {
	Container string
	Stage     Stage
	Status    Status
	Err       error
	Elapsed   time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Queued announces every container before work starts.
func Queued(sink ProgressSink, containers []string) {
	if sink == nil {
		return
	}
	for _, c := range containers {
		sink.OnEvent(Event{Container: c, Stage: StageScan, Status: StatusQueued})
	}
}

// Report sends one event; nil sinks are allowed.
func Report(sink ProgressSink, container string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Container: container, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Add accumulates a duration for the given stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
