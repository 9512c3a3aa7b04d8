package model

import "strings"

// Location is the optional source position carried by a Field for
// diagnostics only; it is never part of equality (spec.md §3).
type Location struct {
	File string
	Line int
}

// Field owns a FieldName and a string value (spec.md §3, §4.3).
type Field struct {
	name  *FieldName
	value string
	loc   Location
}

// NewField builds a Field from an already-parsed name and a value.
func NewField(name *FieldName, value string) *Field {
	return &Field{name: name, value: value}
}

// Name returns the field's name (not a copy; callers must Dup before
// mutating if they need an independent name).
func (f *Field) Name() *FieldName { return f.name }

// SetName deep-copies n into the field's name.
func (f *Field) SetName(n *FieldName) { f.name = n.Dup() }

// Value returns the field's value string.
func (f *Field) Value() string { return f.value }

// SetValue replaces the field's value.
func (f *Field) SetValue(s string) { f.value = s }

// Location returns the field's source location (zero value if unset).
func (f *Field) Location() Location { return f.loc }

// SetLocation records where this field was parsed from.
func (f *Field) SetLocation(file string, line int) { f.loc = Location{File: file, Line: line} }

// Dup returns a deep copy, including location.
func (f *Field) Dup() *Field {
	return &Field{name: f.name.Dup(), value: f.value, loc: f.loc}
}

// FieldsEqual reports whether two fields are equal: their names are
// role-equal (spec.md §3: "Two fields are equal iff their names are
// role-equal"). Per spec.md §9, equality here is by name (and, when used
// for record-subset comparison, also by value) -- never by pointer
// identity, unlike the discrepancy flagged in the original C
// implementation (rec_field lists compared by data-pointer `==`).
func FieldsEqual(a, b *Field) bool {
	return Equal(a.name, b.name)
}

// FieldsEqualValue reports whether two fields are equal in both name and
// value; used by Record equality (spec.md §3: Records compared by
// element equality, which for fields is name *and* value).
func FieldsEqualValue(a, b *Field) bool {
	return Equal(a.name, b.name) && a.value == b.value
}

// ToComment renders the field in Normal form and wraps it as a Comment,
// prefixing every resulting line with "#" and stripping the trailing
// newline (spec.md §4.3). Used by "comment-out" operations.
func (f *Field) ToComment() *Comment {
	rendered := f.name.ToString(RenderNormal) + " " + f.value
	lines := strings.Split(rendered, "\n")
	for i, l := range lines {
		lines[i] = "#" + l
	}
	return NewComment(strings.Join(lines, "\n"))
}
