package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/recdb/internal/writer"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

var writeSexp bool

func init() {
	cmd := newWriteCmd()
	cmd.Flags().BoolVar(&writeSexp, "sexp", false, "emit the lisp-ish debugging form instead of normal rec syntax")
	rootCmd.AddCommand(cmd)
}

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <file>",
		Short: "Parse a rec file and re-emit it, optionally in sexp form",
		Long: `write is a round-trip passthrough: it parses <file> into a DB and
writes it straight back out, in Normal or Sexp mode. It exists to
exercise the writer's public API shape, not as a rewrite tool --
recctl never writes back to <file> itself.

Example:
  recctl write contacts.rec
  recctl write contacts.rec --sexp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(args[0])
		},
	}
}

func runWrite(path string) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}

	mode := rtypes.Normal
	if writeSexp {
		mode = rtypes.Sexp
	}
	return writer.New(os.Stdout, mode).WriteDB(db)
}
