// Package rtypes holds the error taxonomy and small shared value types used
// across the recdb packages (model, parser, writer, typesys, sex, fex,
// integrity, resolve). Keeping them in one leaf package avoids import
// cycles between the codec and the data model.
package rtypes

import "fmt"

// ErrKind classifies an Error so callers can branch on intent rather than
// on message text.
type ErrKind int

const (
	ErrKindFormat    ErrKind = iota // grammar/structure violation while parsing
	ErrKindIO                      // underlying reader/writer failure
	ErrKindType                    // type-check failure for a field value
	ErrKindSex                     // selection-expression lex/parse/eval error
	ErrKindFex                     // field-expression lex/parse error
	ErrKindIntegrity               // aggregated integrity violations
	ErrKindRemote                  // remote descriptor fetch failure
	ErrKindState                   // invalid operation for current state
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindIO:
		return "io"
	case ErrKindType:
		return "type"
	case ErrKindSex:
		return "sex"
	case ErrKindFex:
		return "fex"
	case ErrKindIntegrity:
		return "integrity"
	case ErrKindRemote:
		return "remote"
	case ErrKindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause and, for parse
// errors, source location. File/Line are zero when not applicable.
type Error struct {
	Kind ErrKind
	Msg  string
	File string
	Line int
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.File != "" {
		// file:line: error: message, per spec.md §7.
		if e.Err != nil {
			return fmt.Sprintf("%s:%d: error: %s: %s", e.File, e.Line, e.Msg, e.Err)
		}
		return fmt.Sprintf("%s:%d: error: %s", e.File, e.Line, e.Msg)
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind without a location.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// AtLine builds a ParseError-shaped Error carrying file/line, per spec.md
// §4.9/§7.
func AtLine(kind ErrKind, file string, line int, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, File: file, Line: line}
}

// Sentinel errors for conditions named explicitly in spec.md §4.9/§7.
var (
	ErrOutOfMemory       = New(ErrKindIO, "out of memory")
	ErrUnexpectedEOF     = New(ErrKindFormat, "unexpected end of file")
	ErrExpectedFieldName = New(ErrKindFormat, "expected field name")
	ErrExpectedField     = New(ErrKindFormat, "expected field")
	ErrExpectedRecord    = New(ErrKindFormat, "expected record")
	ErrExpectedComment   = New(ErrKindFormat, "expected comment")
	ErrTooManyNameParts  = New(ErrKindFormat, "too many field name parts")
	ErrDuplicatedRset    = New(ErrKindFormat, "duplicated record set")
	ErrDivisionByZero    = New(ErrKindSex, "division by zero")
)
