package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"bindsadapter/internal/buildpipeline"
	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/scan"
	"bindsadapter/internal/source"
	"bindsadapter/internal/trace"
)

// ErrConflictingInputs is returned when more than one declaration source is set.
var ErrConflictingInputs = errors.New("only one of manifest, snapshot or package patterns may be given")

// Input selects where declarations come from. Exactly one of Manifest,
// Snapshot or Patterns is used; with none set the package in Dir is scanned.
type Input struct {
	Dir      string
	Patterns []string
	Env      []string
	Manifest string // YAML manifest
	Snapshot string // msgpack snapshot
}

// Discover builds the declaration snapshot of one run.
func Discover(ctx context.Context, fs *source.FileSet, in Input, progress buildpipeline.ProgressSink, observer PhaseObserver, r diag.Reporter) (*decl.Snapshot, error) {
	sources := 0
	for _, set := range []bool{in.Manifest != "", in.Snapshot != "", len(in.Patterns) > 0} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return nil, ErrConflictingInputs
	}

	done := observer.observe("scan")
	ctx, span := trace.Start(ctx, trace.ScopeStage, "scan")
	start := time.Now()
	buildpipeline.Report(progress, "", buildpipeline.StageScan, buildpipeline.StatusWorking, nil, 0)

	snap, err := discover(ctx, fs, in, r)
	if err != nil {
		buildpipeline.Report(progress, "", buildpipeline.StageScan, buildpipeline.StatusError, err, time.Since(start))
		span.End(err.Error())
		done(err.Error())
		return nil, err
	}

	note := fmt.Sprintf("%d containers, %d variants", len(snap.Containers()), len(snap.Variants()))
	buildpipeline.Report(progress, "", buildpipeline.StageScan, buildpipeline.StatusDone, nil, time.Since(start))
	span.End(note)
	done(note)
	return snap, nil
}

func discover(ctx context.Context, fs *source.FileSet, in Input, r diag.Reporter) (*decl.Snapshot, error) {
	switch {
	case in.Manifest != "":
		return decl.LoadManifest(fs, in.Manifest, r)
	case in.Snapshot != "":
		// #nosec G304 -- path comes from the command line
		f, err := os.Open(in.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		return decl.DecodeMsgpack(bufio.NewReader(f), r)
	default:
		return scan.Load(ctx, fs, scan.LoadOptions{Dir: in.Dir, Patterns: in.Patterns, Env: in.Env}, r)
	}
}
