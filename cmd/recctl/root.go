package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "recctl",
	Short: "Inspect and query rec-format record databases",
	Long: `recctl is a demonstration tool binding recdb's core API shape:
record selection by type, selection expression and field expression,
integrity checking, and parse-and-re-emit to standard output. It never
writes back to the input file and does not reimplement
recsel/recins/recdel/recset/recfix in full.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}
