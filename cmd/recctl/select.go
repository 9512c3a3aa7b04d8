package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/recdb/internal/writer"
	"github.com/joshuapare/recdb/pkg/fex"
	"github.com/joshuapare/recdb/pkg/rtypes"
	"github.com/joshuapare/recdb/pkg/sex"
)

var (
	selectType          string
	selectSex           string
	selectFex           string
	selectNum           int
	selectCaseSensitive bool
	selectValuesOnly    bool
	selectRow           bool
)

func init() {
	cmd := newSelectCmd()
	cmd.Flags().StringVar(&selectType, "type", "", "record set type to select from (default: the file's only record set)")
	cmd.Flags().StringVar(&selectSex, "sex", "", "selection expression restricting which records are emitted")
	cmd.Flags().StringVar(&selectFex, "fex", "", "field expression restricting which fields of each record are emitted")
	cmd.Flags().IntVar(&selectNum, "num", 0, "stop after this many matching records (0 = unlimited)")
	cmd.Flags().BoolVar(&selectCaseSensitive, "case-sensitive", false, "make --sex's ~ regex matches case-sensitive (= always is)")
	cmd.Flags().BoolVar(&selectValuesOnly, "values-only", false, "with --fex, print bare values instead of \"name: value\"")
	cmd.Flags().BoolVar(&selectRow, "row", false, "with --fex --values-only, print all of a record's values on one line")
	rootCmd.AddCommand(cmd)
}

func newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <file>",
		Short: "Select records by type, selection expression, and field expression",
		Long: `select reads a rec file and writes the records matching --type and
--sex, optionally projected down to the fields named by --fex.

Example:
  recctl select contacts.rec --type Contact --sex "Age > 30"
  recctl select contacts.rec --fex "Name,Email" --values-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(args[0])
		},
	}
}

func runSelect(path string) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}

	rs := pickRSet(db, selectType)
	if rs == nil {
		return fmt.Errorf("no record set of type %q in %s", selectType, path)
	}

	var expr *sex.SEX
	if selectSex != "" {
		expr, err = sex.New(selectSex, selectCaseSensitive)
		if err != nil {
			return fmt.Errorf("invalid --sex: %w", err)
		}
	}

	var fx *fex.FEX
	if selectFex != "" {
		fx, err = fex.New(selectFex, rtypes.FexSubscripted)
		if err != nil {
			return fmt.Errorf("invalid --fex: %w", err)
		}
	}

	wr := writer.New(os.Stdout, rtypes.Normal)
	printed := 0
	wroteAny := false
	for i := 0; i < rs.NumRecords() && (selectNum <= 0 || printed < selectNum); i++ {
		rec := rs.GetRecord(i)
		if expr != nil {
			match, ok := expr.Eval(rec)
			if !ok {
				return fmt.Errorf("evaluating --sex: %w", expr.Err())
			}
			if !match {
				continue
			}
		}

		if wroteAny {
			fmt.Fprintln(os.Stdout)
		}
		if fx != nil {
			if err := wr.WriteRecordWithFex(rec, fx, selectValuesOnly, selectRow); err != nil {
				return err
			}
		} else if err := wr.WriteRecord(rec); err != nil {
			return err
		}
		wroteAny = true
		printed++
	}

	printVerbose("matched %d record(s) in %q\n", printed, rs.Type())
	return nil
}
