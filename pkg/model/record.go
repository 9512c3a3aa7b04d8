package model

import (
	"strings"

	"github.com/joshuapare/recdb/pkg/rtypes"
)

// These element-type ids are fixed across every Record's MSet, so every
// Record uses the same small type vocabulary. RSet does not use them: it
// registers its own record and comment ids on its own MSet.
const (
	elemField   rtypes.ElementType = 1
	elemComment rtypes.ElementType = 2
	elemRecord  rtypes.ElementType = 3
)

func fieldEqual(a, b any) bool { return FieldsEqualValue(a.(*Field), b.(*Field)) }
func fieldDup(v any) any       { return v.(*Field).Dup() }

func commentEqual(a, b any) bool { return CommentsEqual(a.(*Comment), b.(*Comment)) }
func commentDup(v any) any       { return v.(*Comment).Dup() }

// Record is an MSet of Field and Comment elements with typed helper
// accessors (spec.md §3, §4.5). Field order is significant and preserved.
type Record struct {
	set *MSet
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	set := NewMSet()
	set.ops[elemField] = typeOps{equal: fieldEqual, dup: fieldDup}
	set.ops[elemComment] = typeOps{equal: commentEqual, dup: commentDup}
	set.nextTyp = elemRecord + 1
	return &Record{set: set}
}

// MSet exposes the underlying generic container for callers that need
// type-agnostic iteration (e.g. the writer).
func (r *Record) MSet() *MSet { return r.set }

// NumFields returns the number of field elements.
func (r *Record) NumFields() int { return r.set.Count(elemField) }

// NumComments returns the number of comment elements.
func (r *Record) NumComments() int { return r.set.Count(elemComment) }

// GetField returns the i-th field overall (0-based), or nil.
func (r *Record) GetField(i int) *Field {
	v, ok := r.set.Get(elemField, i)
	if !ok {
		return nil
	}
	return v.(*Field)
}

// GetComment returns the i-th comment overall (0-based), or nil.
func (r *Record) GetComment(i int) *Comment {
	v, ok := r.set.Get(elemComment, i)
	if !ok {
		return nil
	}
	return v.(*Comment)
}

// AppendField appends f at the end of the record.
func (r *Record) AppendField(f *Field) { r.set.Append(elemField, f) }

// AppendComment appends c at the end of the record.
func (r *Record) AppendComment(c *Comment) { r.set.Append(elemComment, c) }

// GetFieldByName returns the n-th (0-based) field whose name role-equals
// fn, or nil (spec.md §4.5).
func (r *Record) GetFieldByName(fn *FieldName, n int) *Field {
	k := 0
	var found *Field
	r.set.Each(func(typ rtypes.ElementType, data any) bool {
		if typ != elemField {
			return true
		}
		f := data.(*Field)
		if Equal(f.Name(), fn) {
			if k == n {
				found = f
				return false
			}
			k++
		}
		return true
	})
	return found
}

// NumFieldsByName returns the number of fields whose name role-equals fn
// (spec.md §4.5, and invariant 1 of spec.md §8).
func (r *Record) NumFieldsByName(fn *FieldName) int {
	n := 0
	r.set.Each(func(typ rtypes.ElementType, data any) bool {
		if typ == elemField && Equal(data.(*Field).Name(), fn) {
			n++
		}
		return true
	})
	return n
}

// RemoveAllIndex is passed to RemoveFieldByName to remove every matching
// field instead of a single index.
const RemoveAllIndex = -1

// RemoveFieldByName removes the index-th (0-based) field named fn, or
// every matching field when index is RemoveAllIndex. Returns the number
// of fields removed.
func (r *Record) RemoveFieldByName(fn *FieldName, index int) int {
	if index == RemoveAllIndex {
		removed := 0
		// Walk backwards so absolute indices of not-yet-visited
		// matches stay valid as we remove.
		matches := r.matchingIndices(fn)
		for i := len(matches) - 1; i >= 0; i-- {
			r.set.RemoveAt(matches[i])
			removed++
		}
		return removed
	}
	matches := r.matchingIndices(fn)
	if index < 0 || index >= len(matches) {
		return 0
	}
	r.set.RemoveAt(matches[index])
	return 1
}

func (r *Record) matchingIndices(fn *FieldName) []int {
	var idx []int
	i := 0
	r.set.Each(func(typ rtypes.ElementType, data any) bool {
		if typ == elemField && Equal(data.(*Field).Name(), fn) {
			idx = append(idx, i)
		}
		i++
		return true
	})
	return idx
}

// FieldP reports whether any field in the record has the given name
// (spec.md §4.5 "field_p").
func (r *Record) FieldP(fn *FieldName) bool {
	return r.NumFieldsByName(fn) > 0
}

// Dup returns a deep copy.
func (r *Record) Dup() *Record {
	return &Record{set: r.set.Dup()}
}

// RecordsEqual reports whether each record is a subset of the other under
// element equality (spec.md §3, §4.5): every field/comment in a has an
// equal counterpart in b and vice versa.
func RecordsEqual(a, b *Record) bool {
	return recordIsSubsetOf(a, b) && recordIsSubsetOf(b, a)
}

func recordIsSubsetOf(a, b *Record) bool {
	used := make([]bool, b.set.Count(rtypes.AnyElement))
	ok := true
	a.set.Each(func(typ rtypes.ElementType, data any) bool {
		found := false
		i := 0
		b.set.Each(func(btyp rtypes.ElementType, bdata any) bool {
			if !found && btyp == typ && !used[i] {
				ops := a.set.ops[typ]
				if ops.equal(data, bdata) {
					used[i] = true
					found = true
				}
			}
			i++
			return true
		})
		if !found {
			ok = false
			return false
		}
		return true
	})
	return ok
}

// ToComment renders the record's fields and comments in Normal textual
// form and wraps the whole thing as a single Comment, stripping the
// trailing newline (spec.md §4.5). This stays in the model package
// (rather than calling through to the writer) to avoid an import cycle,
// since the writer itself depends on model.
func (r *Record) ToComment() *Comment {
	var lines []string
	r.set.Each(func(typ rtypes.ElementType, data any) bool {
		switch typ {
		case elemField:
			f := data.(*Field)
			rendered := f.Name().ToString(RenderNormal) + " " + f.Value()
			lines = append(lines, strings.Split(rendered, "\n")...)
		case elemComment:
			c := data.(*Comment)
			lines = append(lines, "#"+c.Text())
		}
		return true
	})
	for i, l := range lines {
		if !strings.HasPrefix(l, "#") {
			lines[i] = "#" + l
		}
	}
	return NewComment(strings.Join(lines, "\n"))
}
