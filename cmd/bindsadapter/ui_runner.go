package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"bindsadapter/internal/buildpipeline"
	"bindsadapter/internal/decl"
	"bindsadapter/internal/diag"
	"bindsadapter/internal/driver"
	"bindsadapter/internal/ui"
)

type genOutcome struct {
	result   *driver.Result
	written  []driver.Written
	writeBag *diag.Bag
	err      error
}

// runGenerate generates and then writes (or compares) the files.
func runGenerate(ctx context.Context, snap *decl.Snapshot, opts driver.Options, check bool, maxDiags int, progress buildpipeline.ProgressSink) genOutcome {
	opts.Progress = progress
	res, err := driver.Generate(ctx, snap, opts)
	if err != nil {
		return genOutcome{err: err}
	}
	writeBag := diag.NewBag(maxDiags)
	written := driver.WriteFiles(ctx, res.Files, check, progress, opts.Observer, diag.BagReporter{Bag: writeBag})
	return genOutcome{result: res, written: written, writeBag: writeBag}
}

func runGenerateWithUI(ctx context.Context, title string, snap *decl.Snapshot, opts driver.Options, check bool, maxDiags int) genOutcome {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan genOutcome, 1)

	// наблюдатель логирует из горутины генерации, UI владеет stdout
	go func() {
		outcome := runGenerate(ctx, snap, opts, check, maxDiags, buildpipeline.ChannelSink{Ch: events})
		outcomeCh <- outcome
		close(events)
	}()

	model := ui.NewProgressModel(title, containerNames(snap), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// после досрочного выхода из UI генерация не должна блокироваться на канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		outcome.err = uiErr
	}
	return outcome
}
