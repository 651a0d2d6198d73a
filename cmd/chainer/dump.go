package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/chainer/pkg/chainer/export"
)

var assertedOnly bool

var dumpCmd = &cobra.Command{
	Use:   "dump [file...]",
	Short: "Load knowledge files and print the closed knowledge base",
	Long: `Prints every fact and rule after inference, in the same syntax the
knowledge files use. With --asserted, derived items are omitted.

Derived items are marked only by a trailing comment. Loading a full dump
again asserts them, so use --asserted for files meant to be reloaded.`,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&assertedOnly, "asserted", false, "Only print asserted items")
}

func runDump(cmd *cobra.Command, args []string) error {
	comp, err := load(args)
	if err != nil {
		return err
	}
	defer comp.Logger.Sync()

	exp := export.Exporter{
		Writer:       export.StreamWriter{W: cmd.OutOrStdout()},
		AssertedOnly: assertedOnly,
	}
	return exp.ExportKB(cmd.Context(), comp.KB)
}
