package model

import (
	"strings"

	"github.com/joshuapare/recdb/pkg/rtypes"
)

// MaxNameParts is the maximum number of ordered parts a FieldName may
// carry (spec.md §3: "Up to three ordered non-empty ASCII parts").
const MaxNameParts = 3

// FieldName is an ordered 1-3 part identifier, e.g. "Name", or the
// qualified "Type:Name:Email" (spec.md §3).
type FieldName struct {
	parts [MaxNameParts]string
	size  int
}

// NewFieldName returns an empty FieldName (size 0).
func NewFieldName() *FieldName {
	return &FieldName{}
}

// NewFieldNameFromParts builds a FieldName from 1-3 already-validated
// parts, in order. It is a convenience used throughout the codebase and
// tests; it does not itself validate grammar (ParseFieldName does).
func NewFieldNameFromParts(parts ...string) *FieldName {
	fn := &FieldName{}
	for _, p := range parts {
		fn.Append(p)
	}
	return fn
}

// Size reports the number of parts currently set.
func (f *FieldName) Size() int { return f.size }

// Get returns part i, or "" if i is out of [0, Size()).
func (f *FieldName) Get(i int) string {
	if i < 0 || i >= f.size {
		return ""
	}
	return f.parts[i]
}

// Set assigns part i (0..2), growing the logical size to i+1 if needed,
// per spec.md §4.2.
func (f *FieldName) Set(i int, s string) bool {
	if i < 0 || i >= MaxNameParts {
		return false
	}
	f.parts[i] = s
	if i+1 > f.size {
		f.size = i + 1
	}
	return true
}

// Append sets the next unused part, growing size by one. Returns false if
// the name is already full.
func (f *FieldName) Append(s string) bool {
	if f.size >= MaxNameParts {
		return false
	}
	return f.Set(f.size, s)
}

// Dup returns a deep copy.
func (f *FieldName) Dup() *FieldName {
	cp := &FieldName{size: f.size}
	copy(cp.parts[:], f.parts[:])
	return cp
}

// Eql is strict equality: same number of parts, componentwise string
// equality (spec.md §3).
func Eql(a, b *FieldName) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.size != b.size {
		return false
	}
	for i := 0; i < a.size; i++ {
		if a.parts[i] != b.parts[i] {
			return false
		}
	}
	return true
}

// Equal is role-equality: a bare 1-part "role" name equals the last part
// of a qualified name (or vice versa); with equal lengths it degenerates
// to strict equality (spec.md §3, §4.2). This is used throughout lookups
// so a field referenced as "Email" matches a fully-qualified
// "Type:Name:Email".
func Equal(a, b *FieldName) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.size == b.size {
		return Eql(a, b)
	}
	if a.size == 1 {
		return a.parts[0] == b.parts[b.size-1]
	}
	if b.size == 1 {
		return b.parts[0] == a.parts[a.size-1]
	}
	return false
}

// RenderMode selects Normal (":"-joined, trailing colon) or Sexp
// (quoted-parts list) field-name rendering, spec.md §4.2.
type RenderMode int

const (
	RenderNormal RenderMode = iota
	RenderSexp
)

// ToString renders the field name per mode.
func (f *FieldName) ToString(mode RenderMode) string {
	if mode == RenderSexp {
		var b strings.Builder
		b.WriteByte('(')
		for i := 0; i < f.size; i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('"')
			b.WriteString(f.parts[i])
			b.WriteByte('"')
		}
		b.WriteByte(')')
		return b.String()
	}
	var b strings.Builder
	for i := 0; i < f.size; i++ {
		b.WriteString(f.parts[i])
		b.WriteByte(':')
	}
	return b.String()
}

// isPartStart reports whether c may start a field-name part: a letter or
// '%' (spec.md §6.1 grammar: part := (letter|"%") {letter|digit|"_"}).
func isPartStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '%'
}

// isPartCont reports whether c may continue a field-name part.
func isPartCont(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}

// ParseFieldName parses a ':'-joined field name string (without the
// trailing colon that terminates it in the file grammar) into a
// FieldName, validating each part against spec.md §6.1's grammar.
func ParseFieldName(s string) (*FieldName, error) {
	if s == "" {
		return nil, rtypes.New(rtypes.ErrKindFormat, "empty field name")
	}
	parts := strings.Split(s, ":")
	if len(parts) > MaxNameParts {
		return nil, rtypes.ErrTooManyNameParts
	}
	fn := NewFieldName()
	for _, p := range parts {
		if p == "" {
			return nil, rtypes.New(rtypes.ErrKindFormat, "empty field name part")
		}
		if !isPartStart(p[0]) {
			return nil, rtypes.New(rtypes.ErrKindFormat, "invalid field name part: "+p)
		}
		for i := 1; i < len(p); i++ {
			if !isPartCont(p[i]) {
				return nil, rtypes.New(rtypes.ErrKindFormat, "invalid field name part: "+p)
			}
		}
		fn.Append(p)
	}
	return fn, nil
}

// IsDescriptorField reports whether fn's last part is one of the reserved
// descriptor field names (spec.md §6.1): %rec, %key, %type, %mandatory,
// %unique, %prohibit, %auto, %size.
func (f *FieldName) IsDescriptorField() bool {
	if f.size == 0 {
		return false
	}
	switch f.parts[f.size-1] {
	case "%rec", "%key", "%type", "%mandatory", "%unique", "%prohibit", "%auto", "%size":
		return true
	default:
		return false
	}
}

// Last returns the final part, or "" if empty. Used by role-equal
// lookups and by the type registry's canonical key.
func (f *FieldName) Last() string {
	if f.size == 0 {
		return ""
	}
	return f.parts[f.size-1]
}
