// Package writer implements the encoder side of the textual codec
// (spec.md §4.10): Field/Record/RSet/DB and bare FieldName, in Normal or
// Sexp mode, with an optional FEX filter.
package writer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/recdb/pkg/fex"
	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/recset"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

// Writer buffers writes onto an io.Writer sink in either Normal (canonical
// rec syntax) or Sexp (lisp-ish debugging form) mode (spec.md §4.10).
//
// wrote tracks whether any record or RSet has been written yet: the
// blank-line separator between records (and between record sets) is
// emitted lazily, before the next one, so the very last record in the
// output never gets a trailing blank line it doesn't need (spec.md §6.1
// grammar: a record ends at "blank_line | EOF", not always a blank line).
type Writer struct {
	w     io.Writer
	mode  rtypes.WriteMode
	wrote bool
}

// New returns a Writer in the given mode, writing to w.
func New(w io.Writer, mode rtypes.WriteMode) *Writer {
	return &Writer{w: w, mode: mode}
}

func (wr *Writer) write(s string) error {
	_, err := io.WriteString(wr.w, s)
	if err != nil {
		return rtypes.Wrap(rtypes.ErrKindIO, "writer I/O failure", err)
	}
	return nil
}

// WriteFieldName renders a bare FieldName (spec.md §4.2).
func (wr *Writer) WriteFieldName(fn *model.FieldName) error {
	mode := model.RenderNormal
	if wr.mode == rtypes.Sexp {
		mode = model.RenderSexp
	}
	return wr.write(fn.ToString(mode))
}

// WriteField renders one field: "name: value\n" in Normal mode (every
// embedded "\n" rendered as "\n+ "), or "(field (name-parts…) \"value\")\n"
// in Sexp mode (spec.md §4.10).
func (wr *Writer) WriteField(f *model.Field) error {
	if wr.mode == rtypes.Sexp {
		return wr.write(fmt.Sprintf("(field %s %s)\n",
			f.Name().ToString(model.RenderSexp), quoteSexp(f.Value())))
	}
	name := f.Name().ToString(model.RenderNormal)
	return wr.write(name + " " + renderContinuations(f.Value()) + "\n")
}

// WriteComment renders a comment: "#body\n" in Normal mode, or
// "(comment \"body\")" in Sexp mode (spec.md §4.10).
func (wr *Writer) WriteComment(c *model.Comment) error {
	if wr.mode == rtypes.Sexp {
		return wr.write("(comment " + quoteSexp(c.Text()) + ")")
	}
	return wr.write("#" + c.Text() + "\n")
}

// WriteRecord renders every field and comment of rec in order. It does not
// itself emit the blank-line record terminator; WriteRSet/WriteDB insert
// that separator lazily between successive records so the last record in
// the whole output does not gain a trailing blank line (spec.md §4.10,
// §6.1 grammar).
func (wr *Writer) WriteRecord(rec *model.Record) error {
	if wr.mode == rtypes.Sexp {
		var parts []string
		rec.MSet().Each(func(typ rtypes.ElementType, data any) bool {
			switch v := data.(type) {
			case *model.Field:
				parts = append(parts, fmt.Sprintf("(field %s %s)",
					v.Name().ToString(model.RenderSexp), quoteSexp(v.Value())))
			case *model.Comment:
				parts = append(parts, "(comment "+quoteSexp(v.Text())+")")
			}
			return true
		})
		return wr.write("(record (" + strings.Join(parts, " ") + "))\n")
	}
	var err error
	rec.MSet().Each(func(typ rtypes.ElementType, data any) bool {
		switch v := data.(type) {
		case *model.Field:
			err = wr.WriteField(v)
		case *model.Comment:
			err = wr.WriteComment(v)
		}
		return err == nil
	})
	return err
}

// writeSeparated emits the pending blank-line separator (if something was
// already written) before running write.
func (wr *Writer) writeSeparated(write func() error) error {
	if wr.wrote {
		if err := wr.write("\n"); err != nil {
			return err
		}
	}
	if err := write(); err != nil {
		return err
	}
	wr.wrote = true
	return nil
}

// WriteRSet renders rs's descriptor (if any) followed by every record,
// with the blank-line record separator Normal mode requires between
// consecutive records and between the descriptor and the first data
// record (spec.md §4.10).
func (wr *Writer) WriteRSet(rs *recset.RSet) error {
	if d := rs.Descriptor(); d != nil {
		if err := wr.writeSeparated(func() error { return wr.WriteRecord(d) }); err != nil {
			return err
		}
	}
	var err error
	rs.MSet().Each(func(typ rtypes.ElementType, data any) bool {
		switch v := data.(type) {
		case *model.Record:
			err = wr.writeSeparated(func() error { return wr.WriteRecord(v) })
		case *model.Comment:
			err = wr.writeSeparated(func() error { return wr.WriteComment(v) })
		}
		return err == nil
	})
	return err
}

// WriteDB renders every RSet in db, separated by one blank line between
// record sets, with no trailing blank line after the final record (spec.md
// §4.10).
func (wr *Writer) WriteDB(db *recset.DB) error {
	for i := 0; i < db.Size(); i++ {
		if err := wr.WriteRSet(db.GetRSet(i)); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecordWithFex emits only the fields of rec selected by f (spec.md
// §4.10). valuesOnly prints just the values, one per line (or
// space-separated on one line when row is set); otherwise each selected
// field is rendered in full Normal form.
func (wr *Writer) WriteRecordWithFex(rec *model.Record, f *fex.FEX, valuesOnly, row bool) error {
	var values []string
	for i := 0; i < f.Size(); i++ {
		e, _ := f.Get(i)
		n := rec.NumFieldsByName(e.Name)
		lo, hi := 0, n-1
		if e.Min != fex.All {
			lo, hi = e.Min, e.Max
		}
		for k := lo; k <= hi && k < n; k++ {
			if k < 0 {
				continue
			}
			field := rec.GetFieldByName(e.Name, k)
			if field == nil {
				continue
			}
			if valuesOnly {
				values = append(values, field.Value())
			} else if err := wr.WriteField(field); err != nil {
				return err
			}
		}
	}
	if !valuesOnly {
		return nil
	}
	if row {
		return wr.write(strings.Join(values, " ") + "\n")
	}
	for _, v := range values {
		if err := wr.write(v + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func quoteSexp(s string) string {
	return strconv.Quote(s)
}

// renderContinuations renders an embedded "\n" in a field value as "\n+ "
// (spec.md §4.10), except when the continued line is itself empty, in
// which case the trailing space is omitted ("\n+") so that a value with
// an embedded blank line reads back byte-identical to what produced it
// (spec.md §8 scenario 2).
func renderContinuations(value string) string {
	lines := strings.Split(value, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n+")
			if line != "" {
				b.WriteByte(' ')
			}
		}
		b.WriteString(line)
	}
	return b.String()
}
