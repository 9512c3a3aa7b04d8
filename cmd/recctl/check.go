package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/recdb/pkg/integrity"
)

var (
	checkDescriptors bool
	checkRemote      bool
)

func init() {
	cmd := newCheckCmd()
	cmd.Flags().BoolVar(&checkDescriptors, "descriptors", true, "validate each record set's descriptor (%key/%type/%size/...)")
	cmd.Flags().BoolVar(&checkRemote, "remote", false, "merge a remote descriptor (%rec: Type file.rec) before checking")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Run the integrity checker over every record set in a rec file",
		Long: `check parses a rec file and reports every integrity violation: missing
or duplicated keys, type mismatches, unmet %mandatory/%unique/%prohibit
constraints, and descriptor malformations.

Example:
  recctl check contacts.rec
  recctl check contacts.rec --remote`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}
}

func runCheck(path string) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}

	sink := &integrity.SliceSink{}
	opts := integrity.Options{
		CheckDescriptors: checkDescriptors,
		UseRemote:        checkRemote,
	}
	if checkRemote {
		opts.Fetcher = integrity.FileFetcher{}
	}

	n := integrity.CheckDB(db, opts, sink)
	for _, v := range sink.Violations {
		fmt.Fprintln(os.Stdout, v.String())
	}

	printInfo("%d violation(s)\n", n)
	if n > 0 {
		os.Exit(1)
	}
	return nil
}
