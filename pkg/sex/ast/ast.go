// Package ast defines the selection-expression AST (spec.md §4.8): a
// tagged union rather than an interface hierarchy, since every node kind
// is evaluated by the same single-record evaluator.
package ast

import (
	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/sex/token"
)

// Kind tags a Node's variant.
type Kind int

const (
	// NoVal is the zero-value sentinel; it must never reach evaluation.
	NoVal Kind = iota
	Int
	Str
	Name
	Op
	Sha
)

func (k Kind) String() string {
	switch k {
	case NoVal:
		return "NoVal"
	case Int:
		return "Int"
	case Str:
		return "Str"
	case Name:
		return "Name"
	case Op:
		return "Op"
	case Sha:
		return "Sha"
	default:
		return "?"
	}
}

// Node is one AST node. Only the fields relevant to Kind are populated:
// Int for Kind==Int, Str for Kind==Str, FieldName for Kind==Name, OpKind
// and Children for Kind==Op (1 child for unary "!", 2 for binary
// operators), and Child for Kind==Sha (always wraps a Name node).
type Node struct {
	Kind      Kind
	Int       int64
	Str       string
	FieldName *model.FieldName
	OpKind    token.Type
	Children  []*Node
	Child     *Node
}

// NewInt returns an integer literal node.
func NewInt(v int64) *Node { return &Node{Kind: Int, Int: v} }

// NewStr returns a string literal node.
func NewStr(v string) *Node { return &Node{Kind: Str, Str: v} }

// NewName returns a field-reference node.
func NewName(fn *model.FieldName) *Node { return &Node{Kind: Name, FieldName: fn} }

// NewSha returns a "#name" count node wrapping a Name node.
func NewSha(child *Node) *Node { return &Node{Kind: Sha, Child: child} }

// NewUnary returns a unary Op node ("!").
func NewUnary(op token.Type, operand *Node) *Node {
	return &Node{Kind: Op, OpKind: op, Children: []*Node{operand}}
}

// NewBinary returns a binary Op node.
func NewBinary(op token.Type, left, right *Node) *Node {
	return &Node{Kind: Op, OpKind: op, Children: []*Node{left, right}}
}
