// Package sex implements the selection-expression sublanguage (spec.md
// §4.8): a boolean expression over the fields of a single record, used
// to filter which records an operation acts on.
package sex

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/rtypes"
	"github.com/joshuapare/recdb/pkg/sex/ast"
	"github.com/joshuapare/recdb/pkg/sex/parser"
	"github.com/joshuapare/recdb/pkg/sex/token"
)

// SEX is a parsed selection expression, ready to evaluate against any
// number of records.
type SEX struct {
	root          *ast.Node
	caseSensitive bool
	regexCache    map[string]*regexp.Regexp
	lastErr       *rtypes.Error
}

// New parses expr and returns a SEX evaluable against records.
// caseSensitive controls the "~" regex operator (spec.md §4.8: "case
// sensitivity is a parser-wide flag set at SEX construction").
func New(expr string, caseSensitive bool) (*SEX, error) {
	root, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &SEX{root: root, caseSensitive: caseSensitive, regexCache: make(map[string]*regexp.Regexp)}, nil
}

// valKind distinguishes the two value shapes an evaluation step can
// produce; Go strings/int64 play the role of spec.md §4.8's (type,
// value) eval pair.
type valKind int

const (
	vInt valKind = iota
	vStr
)

type value struct {
	kind valKind
	i    int64
	s    string
}

// Eval evaluates the expression against rec. The second return reports
// whether evaluation succeeded (spec.md §4.8's "eval status flag"); on
// false the caller must treat the result as "not matching" for filtering
// or as a hard error for destructive operations. The first return is the
// boolean filter result, computed from the top-level value: truthy iff
// integer ≠ 0 or string ≠ "".
func (s *SEX) Eval(rec *model.Record) (bool, bool) {
	s.lastErr = nil
	v, ok := s.eval(s.root, rec)
	if !ok {
		return false, false
	}
	return truthy(v), true
}

// Err returns the specific failure from the most recent Eval call that
// returned ok=false, or nil if Eval has not failed (spec.md §4.8/§7's
// DivisionByZero, or a regex compile failure for "~").
func (s *SEX) Err() error {
	if s.lastErr == nil {
		return nil
	}
	return s.lastErr
}

func (s *SEX) fail(err *rtypes.Error) (value, bool) {
	s.lastErr = err
	return value{}, false
}

func truthy(v value) bool {
	if v.kind == vInt {
		return v.i != 0
	}
	return v.s != ""
}

func boolValue(b bool) value {
	if b {
		return value{kind: vInt, i: 1}
	}
	return value{kind: vInt, i: 0}
}

func (s *SEX) eval(n *ast.Node, rec *model.Record) (value, bool) {
	switch n.Kind {
	case ast.Int:
		return value{kind: vInt, i: n.Int}, true
	case ast.Str:
		return value{kind: vStr, s: n.Str}, true
	case ast.Name:
		f := rec.GetFieldByName(n.FieldName, 0)
		if f == nil {
			return value{kind: vStr, s: ""}, true
		}
		return value{kind: vStr, s: f.Value()}, true
	case ast.Sha:
		return value{kind: vInt, i: int64(rec.NumFieldsByName(n.Child.FieldName))}, true
	case ast.Op:
		return s.evalOp(n, rec)
	default:
		return value{}, false
	}
}

func (s *SEX) evalOp(n *ast.Node, rec *model.Record) (value, bool) {
	if n.OpKind == token.NOT {
		v, ok := s.eval(n.Children[0], rec)
		if !ok {
			return value{}, false
		}
		return boolValue(!truthy(v)), true
	}

	left, ok := s.eval(n.Children[0], rec)
	if !ok {
		return value{}, false
	}

	switch n.OpKind {
	case token.OR:
		if truthy(left) {
			return boolValue(true), true
		}
		right, ok := s.eval(n.Children[1], rec)
		if !ok {
			return value{}, false
		}
		return boolValue(truthy(right)), true
	case token.AND:
		if !truthy(left) {
			return boolValue(false), true
		}
		right, ok := s.eval(n.Children[1], rec)
		if !ok {
			return value{}, false
		}
		return boolValue(truthy(right)), true
	}

	right, ok := s.eval(n.Children[1], rec)
	if !ok {
		return value{}, false
	}

	switch n.OpKind {
	case token.EQ, token.NEQ:
		eq := equalValues(left, right)
		if n.OpKind == token.NEQ {
			eq = !eq
		}
		return boolValue(eq), true
	case token.MATCH:
		return s.evalMatch(left, right)
	case token.LT:
		return boolValue(numeric(left) < numeric(right)), true
	case token.GT:
		return boolValue(numeric(left) > numeric(right)), true
	case token.LE:
		return boolValue(numeric(left) <= numeric(right)), true
	case token.GE:
		return boolValue(numeric(left) >= numeric(right)), true
	case token.PLUS:
		return value{kind: vInt, i: numeric(left) + numeric(right)}, true
	case token.MINUS:
		return value{kind: vInt, i: numeric(left) - numeric(right)}, true
	case token.STAR:
		return value{kind: vInt, i: numeric(left) * numeric(right)}, true
	case token.SLASH:
		d := numeric(right)
		if d == 0 {
			return s.fail(rtypes.ErrDivisionByZero)
		}
		return value{kind: vInt, i: numeric(left) / d}, true
	case token.PERCENT:
		d := numeric(right)
		if d == 0 {
			return s.fail(rtypes.ErrDivisionByZero)
		}
		return value{kind: vInt, i: numeric(left) % d}, true
	default:
		return value{}, false
	}
}

// coerceInt reports whether v's value is entirely an integer literal
// (spec.md §4.8: "numeric if both operands coerce to int, else
// string"), distinct from the lenient strtol-style coercion used for
// ordering and arithmetic.
func coerceInt(v value) (int64, bool) {
	if v.kind == vInt {
		return v.i, true
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
	return n, err == nil
}

func equalValues(l, r value) bool {
	li, lok := coerceInt(l)
	ri, rok := coerceInt(r)
	if lok && rok {
		return li == ri
	}
	return asString(l) == asString(r)
}

func asString(v value) string {
	if v.kind == vStr {
		return v.s
	}
	return strconv.FormatInt(v.i, 10)
}

// numeric applies strtol-style lenient coercion (spec.md §4.8: "strings
// convert by strtol-style parsing; empty string → 0"): leading
// whitespace and an optional sign, then as many digits as form a valid
// number, with no trailing-garbage error.
func numeric(v value) int64 {
	if v.kind == vInt {
		return v.i
	}
	return strtol(v.s)
}

func strtol(s string) int64 {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digitsStart {
		return 0
	}
	n, err := strconv.ParseInt(s[start:i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// evalMatch implements "~" with POSIX extended regex (spec.md §4.8).
// regexp.CompilePOSIX restricts parsing to POSIX ERE syntax, which has no
// inline "(?i)" case-insensitivity flag, so case-insensitive matching is
// done by lowercasing both the pattern and the subject before matching
// instead.
func (s *SEX) evalMatch(l, r value) (value, bool) {
	pattern := asString(r)
	re, ok := s.regexCache[pattern]
	if !ok {
		src := pattern
		if !s.caseSensitive {
			src = strings.ToLower(pattern)
		}
		compiled, err := regexp.CompilePOSIX(src)
		if err != nil {
			return s.fail(rtypes.Wrap(rtypes.ErrKindSex, "regex compile failure", err))
		}
		re = compiled
		s.regexCache[pattern] = re
	}
	subject := asString(l)
	if !s.caseSensitive {
		subject = strings.ToLower(subject)
	}
	return boolValue(re.MatchString(subject)), true
}

