// Package fex implements the field-expression sublanguage (SPEC §4.7): a
// compact syntax selecting field names with optional subscripts, used to
// pick which fields an operation (select, write, resolve) should act on.
package fex

import (
	"strconv"
	"strings"

	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

// All is the subscript value meaning "every occurrence" (spec.md §4.7:
// "min = max = -1 meaning all occurrences").
const All = -1

// Elem is one parsed FEX element: the source substring it came from, its
// field name, and an optional [min, max] subscript range.
type Elem struct {
	Source string
	Name   *model.FieldName
	Min    int
	Max    int
}

// FEX is a parsed, ordered field expression (spec.md §4.7).
type FEX struct {
	elems   []Elem
	dialect rtypes.FexDialect
}

// Size returns the number of elements.
func (f *FEX) Size() int { return len(f.elems) }

// Get returns the i-th element, or (zero, false) if out of range.
func (f *FEX) Get(i int) (Elem, bool) {
	if i < 0 || i >= len(f.elems) {
		return Elem{}, false
	}
	return f.elems[i], true
}

// Dialect reports which dialect this FEX was parsed with.
func (f *FEX) Dialect() rtypes.FexDialect { return f.dialect }

// Append adds a new element (fname, min, max) to the end.
func (f *FEX) Append(fname *model.FieldName, min, max int) {
	f.elems = append(f.elems, Elem{
		Source: fname.ToString(model.RenderNormal),
		Name:   fname,
		Min:    min,
		Max:    max,
	})
}

// MemberP reports whether (fname, min, max) is present, comparing the
// name with role-equality.
func (f *FEX) MemberP(fname *model.FieldName, min, max int) bool {
	for _, e := range f.elems {
		if model.Equal(e.Name, fname) && e.Min == min && e.Max == max {
			return true
		}
	}
	return false
}

// Names reports whether any element's name role-equals fname, ignoring
// subscripts. This is the common case used by the integrity checker and
// the resolver when the FEX names a set of fields without subscripting
// (%mandatory:, %unique:, %prohibit:, %auto:, %key:).
func (f *FEX) Names(fname *model.FieldName) bool {
	for _, e := range f.elems {
		if model.Equal(e.Name, fname) {
			return true
		}
	}
	return false
}

// New parses s under the given dialect (spec.md §4.7).
func New(s string, dialect rtypes.FexDialect) (*FEX, error) {
	f := &FEX{dialect: dialect}
	s = strings.TrimSpace(s)
	if s == "" {
		return f, nil
	}
	switch dialect {
	case rtypes.FexSimple:
		for _, tok := range strings.Fields(s) {
			fn, err := model.ParseFieldName(strings.TrimSuffix(tok, ":"))
			if err != nil {
				return nil, rtypes.Wrap(rtypes.ErrKindFex, "invalid field name in fex", err)
			}
			f.elems = append(f.elems, Elem{Source: tok, Name: fn, Min: All, Max: All})
		}
	case rtypes.FexCSV:
		for _, tok := range splitCSV(s) {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			fn, err := model.ParseFieldName(strings.TrimSuffix(tok, ":"))
			if err != nil {
				return nil, rtypes.Wrap(rtypes.ErrKindFex, "invalid field name in fex", err)
			}
			f.elems = append(f.elems, Elem{Source: tok, Name: fn, Min: All, Max: All})
		}
	case rtypes.FexSubscripted:
		for _, tok := range splitCSV(s) {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			nameStr, min, max, err := parseSubscripted(tok)
			if err != nil {
				return nil, err
			}
			fn, err := model.ParseFieldName(strings.TrimSuffix(nameStr, ":"))
			if err != nil {
				return nil, rtypes.Wrap(rtypes.ErrKindFex, "invalid field name in fex", err)
			}
			f.elems = append(f.elems, Elem{Source: tok, Name: fn, Min: min, Max: max})
		}
	default:
		return nil, rtypes.New(rtypes.ErrKindFex, "unknown fex dialect")
	}
	return f, nil
}

// splitCSV splits on commas, cloning each substring out of the original
// (spec.md §9 flags the original C implementation's strsep-based bug of
// retaining pointers into a freed buffer; strings.Split already returns
// independent Go strings, so that class of bug cannot occur here).
func splitCSV(s string) []string {
	return strings.Split(s, ",")
}

// parseSubscripted splits "name[i]" or "name[i-j]" into the bare name and
// the (min, max) subscript, defaulting to (All, All) when no bracket is
// present.
func parseSubscripted(tok string) (name string, min, max int, err error) {
	open := strings.IndexByte(tok, '[')
	if open < 0 {
		return tok, All, All, nil
	}
	if !strings.HasSuffix(tok, "]") {
		return "", 0, 0, rtypes.New(rtypes.ErrKindFex, "malformed subscript: "+tok)
	}
	name = tok[:open]
	inner := tok[open+1 : len(tok)-1]
	if dash := strings.IndexByte(inner, '-'); dash >= 0 {
		lo, errLo := parseNonNegInt(inner[:dash])
		hi, errHi := parseNonNegInt(inner[dash+1:])
		if errLo != nil || errHi != nil {
			return "", 0, 0, rtypes.New(rtypes.ErrKindFex, "malformed subscript range: "+tok)
		}
		return name, lo, hi, nil
	}
	idx, errIdx := parseNonNegInt(inner)
	if errIdx != nil {
		return "", 0, 0, rtypes.New(rtypes.ErrKindFex, "malformed subscript: "+tok)
	}
	return name, idx, idx, nil
}

// parseNonNegInt parses a non-negative integer subscript. spec.md §9
// notes the original rec_resolver_parse_int accumulates digits under a
// condition that never matches ('<' '9' && '>' '0'), effectively dead
// code; the intent -- parse a non-negative integer for the subscript
// grammar -- is what this implements directly.
func parseNonNegInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, rtypes.New(rtypes.ErrKindFex, "invalid subscript index: "+s)
	}
	return n, nil
}

// Sort stably reorders elements by (min, max), treating All (-1) as
// smallest, per spec.md §4.7 and §9 (the original's sort comment admits
// "only works when max is not specified"; here sort is specified and
// total: compare min first, then max, both with All sorting first).
func (f *FEX) Sort() {
	// Stable insertion sort, matching the style of the teacher's
	// sort.SliceStable usage for value/subkey ordering
	// (internal/regtext/emit.go exportKey), generalized to a
	// two-key comparator.
	for i := 1; i < len(f.elems); i++ {
		j := i
		for j > 0 && less(f.elems[j], f.elems[j-1]) {
			f.elems[j], f.elems[j-1] = f.elems[j-1], f.elems[j]
			j--
		}
	}
}

func less(a, b Elem) bool {
	if a.Min != b.Min {
		return rank(a.Min) < rank(b.Min)
	}
	return rank(a.Max) < rank(b.Max)
}

// rank maps All (-1) to below every non-negative subscript, so "all
// occurrences" sorts first.
func rank(v int) int {
	if v == All {
		return -1
	}
	return v
}

// ToString renders the FEX back to its textual form under dialect.
func (f *FEX) ToString(dialect rtypes.FexDialect) string {
	parts := make([]string, 0, len(f.elems))
	for _, e := range f.elems {
		s := e.Name.ToString(model.RenderNormal)
		s = strings.TrimSuffix(s, ":")
		if dialect == rtypes.FexSubscripted && (e.Min != All || e.Max != All) {
			if e.Min == e.Max {
				s += "[" + strconv.Itoa(e.Min) + "]"
			} else {
				s += "[" + strconv.Itoa(e.Min) + "-" + strconv.Itoa(e.Max) + "]"
			}
		}
		parts = append(parts, s)
	}
	switch dialect {
	case rtypes.FexSimple:
		return strings.Join(parts, " ")
	default:
		return strings.Join(parts, ",")
	}
}
