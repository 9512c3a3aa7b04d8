// Package typesys implements the rec type system (spec.md §4.6): parsing
// type descriptors into Type values and checking field values against
// them, plus a per-RSet TypeRegistry.
package typesys

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joshuapare/recdb/pkg/rtypes"
)

// Kind enumerates the type descriptor kinds (spec.md §4.6).
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindRange
	KindReal
	KindSize
	KindLine
	KindRegexp
	KindDate
	KindEnum
	KindField
	KindEmail
)

// emailRE matches an email-shaped value (spec.md §4.6 "email").
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Type stores a parsed type descriptor's kind and parameters.
type Type struct {
	Kind Kind

	// range
	Min, Max int

	// size
	MaxBytes int

	// regexp
	re *regexp.Regexp

	// enum
	Names []string

	// field
	FieldPart string
}

// Check performs the kind-specific value check (spec.md §4.6). It is
// total: every value either passes or yields a non-empty error message
// (spec.md §8 invariant 6).
func (t *Type) Check(value string) (ok bool, msg string) {
	switch t.Kind {
	case KindInt:
		if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
			return false, fmt.Sprintf("invalid int value: %q", value)
		}
		return true, ""

	case KindBool:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes", "no", "true", "false", "0", "1":
			return true, ""
		default:
			return false, fmt.Sprintf("invalid bool value: %q", value)
		}

	case KindRange:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return false, fmt.Sprintf("invalid range value: %q", value)
		}
		if n < t.Min || n > t.Max {
			return false, fmt.Sprintf("value %d out of range [%d,%d]", n, t.Min, t.Max)
		}
		return true, ""

	case KindReal:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return false, fmt.Sprintf("invalid real value: %q", value)
		}
		return true, ""

	case KindSize:
		if len(value) > t.MaxBytes {
			return false, fmt.Sprintf("value exceeds max size %d bytes", t.MaxBytes)
		}
		return true, ""

	case KindLine:
		if strings.ContainsRune(value, '\n') {
			return false, "value contains an embedded newline"
		}
		return true, ""

	case KindRegexp:
		if !t.re.MatchString(value) {
			return false, fmt.Sprintf("value %q does not match regexp", value)
		}
		return true, ""

	case KindDate:
		if !parseDate(value) {
			return false, fmt.Sprintf("invalid date value: %q", value)
		}
		return true, ""

	case KindEnum:
		for _, n := range t.Names {
			if n == value {
				return true, ""
			}
		}
		return false, fmt.Sprintf("value %q is not one of the enumerated names", value)

	case KindField:
		if !isValidFieldNameString(value) {
			return false, fmt.Sprintf("value %q is not a valid field name", value)
		}
		return true, ""

	case KindEmail:
		if !emailRE.MatchString(value) {
			return false, fmt.Sprintf("value %q is not a valid email address", value)
		}
		return true, ""
	}
	return false, "unknown type kind"
}

// dateLayouts are the formats accepted when parsing a date value
// (spec.md §4.6: "any date accepted by the system date parser; the
// writer format is ISO-8601").
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func parseDate(value string) bool {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// FormatDate renders t in the writer's ISO-8601 output format.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func isValidFieldNameString(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ":") {
		if part == "" {
			return false
		}
		c := part[0]
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '%') {
			return false
		}
		for i := 1; i < len(part); i++ {
			c := part[i]
			if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
				return false
			}
		}
	}
	return true
}

// enumNameRE validates an individual enum literal (spec.md §4.6: names
// match "[A-Za-z0-9][A-Za-z0-9_-]*").
var enumNameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ParseDescriptor parses a type-expression suffix (the part of a
// "%type:" descriptor value after the FEX prefix has been stripped) into
// a Type (spec.md §4.6).
func ParseDescriptor(expr string) (*Type, error) {
	expr = strings.TrimSpace(expr)
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return nil, rtypes.New(rtypes.ErrKindType, "empty type expression")
	}
	kind := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(expr, kind))

	switch kind {
	case "int":
		return &Type{Kind: KindInt}, nil
	case "bool":
		return &Type{Kind: KindBool}, nil
	case "real":
		return &Type{Kind: KindReal}, nil
	case "line":
		return &Type{Kind: KindLine}, nil
	case "date":
		return &Type{Kind: KindDate}, nil
	case "email":
		return &Type{Kind: KindEmail}, nil

	case "range":
		min, max, err := parseRange(rest)
		if err != nil {
			return nil, err
		}
		return &Type{Kind: KindRange, Min: min, Max: max}, nil

	case "size":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return nil, rtypes.New(rtypes.ErrKindType, "invalid size type: "+expr)
		}
		return &Type{Kind: KindSize, MaxBytes: n}, nil

	case "regexp":
		pat, err := parseDelimited(rest)
		if err != nil {
			return nil, err
		}
		re, err := regexp.CompilePOSIX(pat)
		if err != nil {
			return nil, rtypes.Wrap(rtypes.ErrKindType, "invalid regexp type: "+expr, err)
		}
		return &Type{Kind: KindRegexp, re: re}, nil

	case "enum":
		names := strings.Fields(rest)
		if len(names) == 0 {
			return nil, rtypes.New(rtypes.ErrKindType, "enum type requires at least one name: "+expr)
		}
		for _, n := range names {
			if !enumNameRE.MatchString(n) {
				return nil, rtypes.New(rtypes.ErrKindType, "invalid enum name: "+n)
			}
		}
		return &Type{Kind: KindEnum, Names: names}, nil

	case "field":
		fname := strings.TrimSpace(rest)
		if !isValidFieldNameString(fname) {
			return nil, rtypes.New(rtypes.ErrKindType, "invalid field type parameter: "+expr)
		}
		return &Type{Kind: KindField, FieldPart: fname}, nil
	}

	return nil, rtypes.New(rtypes.ErrKindType, "unknown type kind: "+kind)
}

func parseRange(rest string) (int, int, error) {
	rest = strings.TrimSpace(rest)
	var sep string
	if strings.Contains(rest, "..") {
		sep = ".."
	} else {
		sep = " "
	}
	parts := strings.SplitN(rest, sep, 2)
	if len(parts) != 2 {
		return 0, 0, rtypes.New(rtypes.ErrKindType, "invalid range bounds: "+rest)
	}
	min, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	max, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, rtypes.New(rtypes.ErrKindType, "invalid range bounds: "+rest)
	}
	return min, max, nil
}

// parseDelimited parses "/re/" or "|re|" (spec.md §4.6: "delimiter may be
// any non-alnum char the writer reused").
func parseDelimited(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return "", rtypes.New(rtypes.ErrKindType, "invalid delimited regexp: "+s)
	}
	delim := s[0]
	if delim == ' ' || (delim >= 'a' && delim <= 'z') || (delim >= 'A' && delim <= 'Z') || (delim >= '0' && delim <= '9') {
		return "", rtypes.New(rtypes.ErrKindType, "invalid regexp delimiter: "+s)
	}
	if s[len(s)-1] != delim {
		return "", rtypes.New(rtypes.ErrKindType, "unterminated delimited regexp: "+s)
	}
	return s[1 : len(s)-1], nil
}
