package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bindsadapter/internal/diagfmt"
	"bindsadapter/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir|pattern...]",
	Short: "Resolve declarations and report diagnostics without writing",
	RunE:  runCheck,
}

func init() {
	addDeclFlags(checkCmd)
	checkCmd.Flags().String("format", "", "diagnostics format (pretty|short|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel containers (0=config or GOMAXPROCS)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := cmd.Context()

	decls, _ := cmd.Flags().GetString("decls")
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	formatFlag, _ := cmd.Flags().GetString("format")
	jobs, _ := cmd.Flags().GetInt("jobs")

	format, err := env.format(formatFlag)
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

	opts := env.generateOptions("", jobs)
	opts.Timings = env.timings && format == diagfmt.FormatJSON
	res, err := driver.Generate(ctx, snap, opts)
	if err != nil {
		env.render(format)
		return err
	}
	env.bag.Merge(res.Bag)
	env.render(format)
	if env.timings && format != diagfmt.FormatJSON {
		printStageTimings(cmd.ErrOrStderr(), res.Stages)
	}

	if !env.quiet && format != diagfmt.FormatJSON {
		fmt.Fprintf(env.out(), "%d containers, %d generated, %d skipped\n",
			len(res.Outputs), len(res.Files), len(res.Skipped()))
	}
	if env.bag.HasErrors() {
		return errFailed
	}
	return nil
}
