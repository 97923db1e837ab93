package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diagfmt"
	"bindsadapter/internal/driver"
)

var genCmd = &cobra.Command{
	Use:   "gen [dir|pattern...]",
	Short: "Generate adapter dispatch files",
	Long: `Generate scans the packages matching the patterns (the current directory by
default) for bindsadapter directives and writes one file per container next
to its source. With --check nothing is written and the command fails when a
generated file is missing or out of date.`,
	RunE: runGen,
}

func init() {
	addDeclFlags(genCmd)
	genCmd.Flags().String("out", "", "write generated files into this directory")
	genCmd.Flags().Bool("check", false, "compare with files on disk instead of writing")
	genCmd.Flags().Int("jobs", 0, "max parallel containers (0=config or GOMAXPROCS)")
	genCmd.Flags().String("format", "", "diagnostics format (pretty|short|json)")
	genCmd.Flags().String("progress", "auto", "progress view (auto|on|off)")
}

// addDeclFlags registers the alternative declaration sources.
func addDeclFlags(cmd *cobra.Command) {
	cmd.Flags().String("decls", "", "read declarations from a YAML manifest")
	cmd.Flags().String("snapshot", "", "read declarations from a msgpack snapshot")
}

func runGen(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := cmd.Context()

	decls, _ := cmd.Flags().GetString("decls")
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	outDir, _ := cmd.Flags().GetString("out")
	check, _ := cmd.Flags().GetBool("check")
	jobs, _ := cmd.Flags().GetInt("jobs")
	formatFlag, _ := cmd.Flags().GetString("format")
	progressFlag, _ := cmd.Flags().GetString("progress")

	format, err := env.format(formatFlag)
	if err != nil {
		return err
	}
	mode, err := readUIMode(progressFlag)
	if err != nil {
		return err
	}
	in, err := env.input(args, decls, snapshotPath)
	if err != nil {
		return err
	}

	snap, err := driver.Discover(ctx, env.fs, in, nil, env.observer(), env.reporter())
	if err != nil {
		env.render(format)
		return err
	}
	env.log.InfoContext(ctx, "declarations loaded",
		"containers", len(snap.Containers()), "variants", len(snap.Variants()))

	opts := env.generateOptions(outDir, jobs)
	opts.Timings = env.timings && format == diagfmt.FormatJSON

	var outcome genOutcome
	if shouldUseTUI(mode) && !env.quiet && format != diagfmt.FormatJSON && len(snap.Containers()) > 0 {
		title := "bindsadapter gen"
		if check {
			title = "bindsadapter gen --check"
		}
		outcome = runGenerateWithUI(ctx, title, snap, opts, check, env.cfg.Output.MaxDiagnostics)
	} else {
		outcome = runGenerate(ctx, snap, opts, check, env.cfg.Output.MaxDiagnostics, nil)
	}
	if outcome.err != nil {
		env.render(format)
		return outcome.err
	}
	env.bag.Merge(outcome.result.Bag)
	env.bag.Merge(outcome.writeBag)

	stale := reportWritten(env, outcome.written, check)
	for _, id := range outcome.result.Skipped() {
		env.log.InfoContext(ctx, "container skipped", "container", string(id))
	}
	env.render(format)
	if env.timings && format != diagfmt.FormatJSON {
		printStageTimings(cmd.ErrOrStderr(), outcome.result.Stages)
	}

	if env.bag.HasErrors() {
		return errFailed
	}
	if check && stale > 0 {
		return fmt.Errorf("%d generated files are out of date", stale)
	}
	return nil
}

// reportWritten prints one line per file that changed (or would change) and
// returns how many there were.
func reportWritten(env *runEnv, written []driver.Written, check bool) int {
	stale := driver.Stale(written)
	for _, w := range written {
		if w.Err != nil {
			continue
		}
		env.log.DebugContext(env.cmd.Context(), "generated file",
			"path", w.File.Path(), "status", w.Status.String())
	}
	if env.quiet {
		return len(stale)
	}
	for _, w := range stale {
		verb := w.Status.String()
		if check {
			verb = "stale (" + verb + ")"
		}
		fmt.Fprintf(env.out(), "%s %s\n", verb, displayPath(w.File.Path()))
	}
	return len(stale)
}

func displayPath(path string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

// containerNames lists the container IDs in declaration order.
func containerNames(snap *decl.Snapshot) []string {
	containers := snap.Containers()
	out := make([]string, len(containers))
	for i := range containers {
		out[i] = string(containers[i].ID)
	}
	return out
}
