package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bindsadapter/internal/decl"
	"bindsadapter/internal/diagfmt"
	"bindsadapter/internal/driver"
	"bindsadapter/internal/emit"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [dir|pattern...]",
	Short: "Dump discovered declarations as YAML or msgpack",
	Long: `Snapshot runs discovery only and writes the declaration set. The YAML form
can be edited and fed back with gen --decls; the msgpack form with
gen --snapshot.`,
	RunE: runSnapshot,
}

func init() {
	addDeclFlags(snapshotCmd)
	snapshotCmd.Flags().String("format", "yaml", "snapshot format (yaml|msgpack)")
	snapshotCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	decls, _ := cmd.Flags().GetString("decls")
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	formatFlag, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	var encode func(*bytes.Buffer, *decl.Snapshot) error
	switch strings.ToLower(formatFlag) {
	case "yaml", "yml":
		encode = func(b *bytes.Buffer, s *decl.Snapshot) error { return decl.EncodeYAML(b, s) }
	case "msgpack", "mp":
		if output == "" && outputIsTerminal(cmd) {
			return fmt.Errorf("refusing to write msgpack to a terminal, use --output")
		}
		encode = func(b *bytes.Buffer, s *decl.Snapshot) error { return decl.EncodeMsgpack(b, s) }
	default:
		return fmt.Errorf("unknown snapshot format %q (expected yaml|msgpack)", formatFlag)
	}

	in, err := env.input(args, decls, snapshotPath)
	if err != nil {
		return err
	}
	snap, err := driver.Discover(cmd.Context(), env.fs, in, nil, env.observer(), env.reporter())
	env.render(diagfmt.FormatPretty)
	if err != nil {
		return err
	}
	if env.bag.HasErrors() {
		return errFailed
	}

	var buf bytes.Buffer
	if err := encode(&buf, snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if output == "" {
		_, err = env.out().Write(buf.Bytes())
		return err
	}
	if err := emit.WriteAtomic(output, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	env.log.InfoContext(cmd.Context(), "snapshot written", "path", output, "bytes", buf.Len())
	return nil
}
