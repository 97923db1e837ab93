package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bindsadapter/internal/diag"
	"bindsadapter/internal/diagfmt"
	"bindsadapter/internal/driver"
	"bindsadapter/internal/project"
	"bindsadapter/internal/source"
)

// errFailed makes main exit with status 1 after the diagnostics were printed.
var errFailed = errors.New("bindsadapter: failed")

// runEnv is what every generating command needs: the merged configuration,
// the diagnostics bag with its file set and the logger.
type runEnv struct {
	cmd      *cobra.Command
	manifest *project.Manifest
	cfg      project.Config
	fs       *source.FileSet
	bag      *diag.Bag
	log      *slog.Logger
	color    bool
	quiet    bool
	timings  bool
	cleanup  func()
}

// openEnv sets up tracing and logging, loads bindsadapter.toml and applies
// the global flags over it. Close must be called when err is nil.
func openEnv(cmd *cobra.Command) (*runEnv, error) {
	flags := cmd.Root().PersistentFlags()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	stopTracing, err := setupTracing(cmd)
	if err != nil {
		stopProfiling()
		return nil, err
	}
	cleanup := func() {
		stopTracing()
		stopProfiling()
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to get log-format flag: %w", err)
	}
	env := &runEnv{
		cmd:     cmd,
		fs:      source.NewFileSet(),
		log:     configureLogging(cmd.ErrOrStderr(), logLevel, logFormat),
		cleanup: cleanup,
	}

	wd, err := os.Getwd()
	if err != nil {
		env.Close()
		return nil, err
	}
	manifest, found, err := project.Load(wd)
	if err != nil {
		env.Close()
		return nil, err
	}
	if found {
		env.log.DebugContext(cmd.Context(), "config loaded", "path", manifest.Path)
	}
	env.manifest = manifest
	env.cfg = manifest.Config

	if flags.Changed("color") {
		env.cfg.Output.Color, _ = flags.GetString("color")
	}
	if flags.Changed("max-diagnostics") {
		env.cfg.Output.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")
	}
	env.quiet, _ = flags.GetBool("quiet")
	env.timings, _ = flags.GetBool("timings")

	env.color = diagfmt.ColorEnabled(env.cfg.Output.Color, os.Stdout)
	color.NoColor = !env.color
	env.bag = diag.NewBag(env.cfg.Output.MaxDiagnostics)

	manifest.Config = env.cfg
	if err := manifest.Validate(env.reporter()); err != nil {
		env.render(diagfmt.FormatPretty)
		env.Close()
		return nil, err
	}
	return env, nil
}

func (e *runEnv) Close() {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
}

func (e *runEnv) reporter() diag.Reporter {
	return diag.BagReporter{Bag: e.bag}
}

func (e *runEnv) out() io.Writer {
	return e.cmd.OutOrStdout()
}

// format resolves --format over [output].format.
func (e *runEnv) format(flag string) (diagfmt.Format, error) {
	if flag == "" {
		flag = e.cfg.Output.Format
	}
	return diagfmt.ParseFormat(flag)
}

// render prints the bag and, unless quiet or JSON, the summary line.
func (e *runEnv) render(format diagfmt.Format) {
	e.bag.Dedup()
	if err := diagfmt.Write(e.out(), format, e.bag, e.fs, e.color); err != nil {
		e.log.Error("failed to write diagnostics", "err", err)
	}
	if format != diagfmt.FormatJSON && !e.quiet && e.bag.Len() > 0 {
		fmt.Fprintln(e.cmd.ErrOrStderr(), diagfmt.Summary(e.bag))
	}
}

// input builds the driver input from the shared declaration flags.
func (e *runEnv) input(args []string, decls, snapshot string) (driver.Input, error) {
	wd, err := os.Getwd()
	if err != nil {
		return driver.Input{}, err
	}
	return driver.Input{
		Dir:      wd,
		Patterns: args,
		Manifest: decls,
		Snapshot: snapshot,
	}, nil
}

// observer logs phase boundaries at debug level.
func (e *runEnv) observer() driver.PhaseObserver {
	ctx := e.cmd.Context()
	return func(ev driver.PhaseEvent) {
		if ev.Status == driver.PhaseStart {
			e.log.DebugContext(ctx, "phase started", "phase", ev.Name)
			return
		}
		e.log.DebugContext(ctx, "phase finished", "phase", ev.Name, "elapsed", ev.Elapsed, "note", ev.Note)
	}
}

// generateOptions merges [generate] with the command's flags.
func (e *runEnv) generateOptions(outFlag string, jobs int) driver.Options {
	g := e.cfg.Generate
	opts := driver.Options{
		Synth:          e.cfg.SynthOptions(),
		FileSuffix:     g.FileSuffix,
		OutDir:         e.manifest.OutDir(),
		Jobs:           g.Jobs,
		MaxDiagnostics: e.cfg.Output.MaxDiagnostics,
		Observer:       e.observer(),
		Timings:        e.timings,
	}
	if outFlag != "" {
		opts.OutDir = outFlag
	}
	if jobs > 0 {
		opts.Jobs = jobs
	}
	return opts
}
