package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"bindsadapter/internal/buildpipeline"
	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/emit"
	"bindsadapter/internal/observ"
	"bindsadapter/internal/synth"
	"bindsadapter/internal/trace"
)

// Options configure Generate.
type Options struct {
	Synth      synth.Options
	FileSuffix string
	// OutDir replaces the package directory of every generated file.
	OutDir string
	// Jobs limits parallel containers; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps every per-container bag and the merged one.
	MaxDiagnostics int
	Progress       buildpipeline.ProgressSink
	Observer       PhaseObserver
	// Timings appends an ObsTimings report to the merged bag.
	Timings bool
}

// Output is the outcome for one container.
type Output struct {
	Container decl.ID
	// File is nil when the container was skipped.
	File *emit.GeneratedFile
	Bag  *diag.Bag

	synthDur time.Duration
	emitDur  time.Duration
}

// Result of Generate. Outputs and Files follow container declaration order.
type Result struct {
	Outputs []Output
	Files   []emit.GeneratedFile
	Bag     *diag.Bag
	Timing  observ.Report
	Stages  buildpipeline.Timings
}

// Skipped lists containers that produced no file.
func (r *Result) Skipped() []decl.ID {
	var out []decl.ID
	for _, o := range r.Outputs {
		if o.File == nil {
			out = append(out, o.Container)
		}
	}
	return out
}

// Generate runs synthesis and emission for every container of snap. Each
// container is independent: its diagnostics go to its own bag and never stop
// the others. The result is identical for identical snapshots regardless of
// Jobs. Cancellation is checked before each container starts, never inside
// one. A container whose code cannot be rendered gets a GenRenderFailed
// diagnostic and is skipped. An error is returned only for cancellation.
func Generate(ctx context.Context, snap *decl.Snapshot, opts Options) (*Result, error) {
	if snap == nil {
		return nil, fmt.Errorf("generate: nil snapshot")
	}
	containers := snap.Containers()
	done := opts.Observer.observe("generate")
	ctx, span := trace.Start(ctx, trace.ScopeStage, "generate")
	span.WithExtra("containers", fmt.Sprint(len(containers)))

	names := make([]string, len(containers))
	for i := range containers {
		names[i] = string(containers[i].ID)
	}
	buildpipeline.Queued(opts.Progress, names)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	timer := observ.NewTimer()

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	outputs := make([]Output, len(containers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(jobs, len(containers)), 1))
	for i := range containers {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			outputs[i] = generateOne(gctx, snap, &containers[i], opts, timer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End(err.Error())
		done(err.Error())
		return nil, err
	}

	res := &Result{
		Outputs: outputs,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	for _, out := range outputs {
		res.Bag.Merge(out.Bag)
		if out.File != nil {
			res.Files = append(res.Files, *out.File)
		}
		res.Stages.Add(buildpipeline.StageSynth, out.synthDur)
		res.Stages.Add(buildpipeline.StageEmit, out.emitDur)
	}
	res.Timing = timer.Report()
	if opts.Timings {
		appendTimingDiagnostic(res.Bag, timingPayload{
			Kind:       "generate",
			Containers: len(containers),
			TotalMS:    res.Timing.TotalMS,
			Phases:     res.Timing.Phases,
		})
	}

	note := fmt.Sprintf("%d files, %d skipped", len(res.Files), len(containers)-len(res.Files))
	span.End(note)
	done(note)
	return res, nil
}

func generateOne(ctx context.Context, snap *decl.Snapshot, c *decl.Container, opts Options, timer *observ.Timer) Output {
	name := string(c.ID)
	_, span := trace.Start(ctx, trace.ScopeContainer, "container:"+name)
	track := timer.Track(name)
	out := Output{Container: c.ID, Bag: diag.NewBag(opts.MaxDiagnostics)}

	start := time.Now()
	buildpipeline.Report(opts.Progress, name, buildpipeline.StageSynth, buildpipeline.StatusWorking, nil, 0)
	impl, diags := synth.BuildImpl(snap, c, opts.Synth)
	for _, d := range diags {
		out.Bag.Add(d)
	}
	out.synthDur = time.Since(start)
	span.WithExtra("diagnostics", fmt.Sprint(len(diags)))

	if impl == nil {
		buildpipeline.Report(opts.Progress, name, buildpipeline.StageSynth, buildpipeline.StatusSkipped, nil, out.synthDur)
		span.End("skipped")
		track("skipped")
		return out
	}

	start = time.Now()
	buildpipeline.Report(opts.Progress, name, buildpipeline.StageEmit, buildpipeline.StatusWorking, nil, 0)
	file, err := emit.Emit(impl, opts.FileSuffix)
	out.emitDur = time.Since(start)
	if err != nil {
		// сбой одного контейнера не останавливает остальные
		out.Bag.Add(diag.NewError(diag.GenRenderFailed, name, c.Span,
			fmt.Sprintf("container %s: %v; no code is generated for it", c.Name, err)))
		buildpipeline.Report(opts.Progress, name, buildpipeline.StageEmit, buildpipeline.StatusError, err, out.emitDur)
		span.End(err.Error())
		track("error")
		return out
	}
	if opts.OutDir != "" {
		file.Dir = opts.OutDir
	}
	out.File = &file

	buildpipeline.Report(opts.Progress, name, buildpipeline.StageEmit, buildpipeline.StatusDone, nil, out.synthDur+out.emitDur)
	span.End(file.Filename)
	track(fmt.Sprintf("%d variants", len(impl.Tags)))
	return out
}
