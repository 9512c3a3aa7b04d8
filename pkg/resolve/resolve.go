// Package resolve implements the field-path resolver and the aggregate-
// function registry (spec.md §4.12), grounded on
// hive/walker/core.go's callback-per-match traversal style for the
// resolver and on hive/merge/strategy's name-keyed pluggable-behavior
// pattern for the aggregator.
package resolve

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/recdb/internal/writer"
	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

// Resolve writes, to w, every field matched by path -- a comma-separated
// list of `[/]name` elements (spec.md §4.12). Matching is role-equivalent
// (model.Equal); an element prefixed with "/" emits each match as a bare
// "value\n" line, otherwise as the field's Normal writer form. Elements
// naming a field absent from rec emit nothing, and an element that is
// not even a syntactically valid field name is silently skipped the same
// way, since it can never match.
func Resolve(rec *model.Record, path string, w io.Writer) error {
	wr := writer.New(w, rtypes.Normal)
	for _, elem := range strings.Split(path, ",") {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			continue
		}
		raw := strings.HasPrefix(elem, "/")
		name := elem
		if raw {
			name = elem[1:]
		}
		fn, err := model.ParseFieldName(name)
		if err != nil {
			continue
		}
		n := rec.NumFieldsByName(fn)
		for i := 0; i < n; i++ {
			f := rec.GetFieldByName(fn, i)
			if raw {
				if _, err := fmt.Fprintf(w, "%s\n", f.Value()); err != nil {
					return err
				}
				continue
			}
			if err := wr.WriteField(f); err != nil {
				return err
			}
		}
	}
	return nil
}
