package driver

import (
	"context"
	"fmt"
	"time"

	"bindsadapter/internal/buildpipeline"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/emit"
	"bindsadapter/internal/source"
	"bindsadapter/internal/trace"
)

// Written is what WriteFiles did (or, in check mode, would do) with a file.
type Written struct {
	File   emit.GeneratedFile
	Status emit.Status
	Err    error
}

// WriteFiles stores files that differ from disk. With check set nothing is
// written and the statuses describe the drift. A failure is reported as
// IOWriteFileError against the file's container and the remaining files are
// still processed.
func WriteFiles(ctx context.Context, files []emit.GeneratedFile, check bool, progress buildpipeline.ProgressSink, observer PhaseObserver, r diag.Reporter) []Written {
	if r == nil {
		r = diag.NopReporter{}
	}
	done := observer.observe("write")
	_, span := trace.Start(ctx, trace.ScopeStage, "write")

	out := make([]Written, 0, len(files))
	changed := 0
	for _, f := range files {
		start := time.Now()
		name := string(f.Container)
		buildpipeline.Report(progress, name, buildpipeline.StageWrite, buildpipeline.StatusWorking, nil, 0)

		var (
			status emit.Status
			err    error
		)
		if check {
			status, err = emit.Compare(f)
		} else {
			status, err = emit.Write(f)
		}
		if err != nil {
			diag.ReportError(r, diag.IOWriteFileError, name, source.NoSpan,
				fmt.Sprintf("failed to write %s: %v", f.Path(), err)).Emit()
			buildpipeline.Report(progress, name, buildpipeline.StageWrite, buildpipeline.StatusError, err, time.Since(start))
		} else {
			buildpipeline.Report(progress, name, buildpipeline.StageWrite, buildpipeline.StatusDone, nil, time.Since(start))
		}
		if status != emit.Unchanged {
			changed++
		}
		out = append(out, Written{File: f, Status: status, Err: err})
	}

	note := fmt.Sprintf("%d of %d changed", changed, len(files))
	if check {
		note = fmt.Sprintf("%d of %d stale", changed, len(files))
	}
	span.End(note)
	done(note)
	return out
}

// Stale returns entries whose file on disk differs from the generated one.
func Stale(ws []Written) []Written {
	var out []Written
	for _, w := range ws {
		if w.Err == nil && w.Status != emit.Unchanged {
			out = append(out, w)
		}
	}
	return out
}
