package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"bindsadapter/internal/tagname"
)

var tagsCmd = &cobra.Command{
	Use:   "tags <name>...",
	Short: "Print the tag constant names for variant names",
	Long: `Tags prints the dispatch tag constant for every variant name, in the order
given, with the value it would get in a container listing them in that order.
Names that map to the same tag are reported and the command fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTags,
}

func runTags(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	width := 0
	for _, name := range args {
		width = max(width, runewidth.StringWidth(name))
	}
	for i, name := range args {
		fmt.Fprintf(out, "%s  %s = %d\n", runewidth.FillRight(name, width), tagname.Name(name), i)
	}

	collisions := tagname.Collisions(args)
	for _, c := range collisions {
		fmt.Fprintf(cmd.ErrOrStderr(), "duplicate tag %s: %s\n", c.Tag, strings.Join(c.Names, ", "))
	}
	if len(collisions) > 0 {
		return fmt.Errorf("%d duplicate tags", len(collisions))
	}
	return nil
}
