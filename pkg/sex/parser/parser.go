// Package parser implements a Pratt (precedence-climbing) parser for the
// selection-expression sublanguage (spec.md §4.8), grounded on the
// prefix/infix parse-function registration style of
// ha1tch/tsqlparser/parser.
package parser

import (
	"strconv"

	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/rtypes"
	"github.com/joshuapare/recdb/pkg/sex/ast"
	"github.com/joshuapare/recdb/pkg/sex/lexer"
	"github.com/joshuapare/recdb/pkg/sex/token"
)

// Operator precedence levels, low to high (spec.md §4.8 table); every
// operator is left-associative.
const (
	_ int = iota
	LOWEST
	OR
	AND
	UNARY_NOT
	EQUALITY
	RELATIONAL
	ADDITIVE
	MULTIPLICATIVE
)

var precedences = map[token.Type]int{
	token.OR:      OR,
	token.AND:     AND,
	token.EQ:      EQUALITY,
	token.NEQ:     EQUALITY,
	token.MATCH:   EQUALITY,
	token.LT:      RELATIONAL,
	token.GT:      RELATIONAL,
	token.LE:      RELATIONAL,
	token.GE:      RELATIONAL,
	token.PLUS:    ADDITIVE,
	token.MINUS:   ADDITIVE,
	token.STAR:    MULTIPLICATIVE,
	token.SLASH:   MULTIPLICATIVE,
	token.PERCENT: MULTIPLICATIVE,
}

type (
	prefixParseFn func() (*ast.Node, error)
	infixParseFn  func(*ast.Node) (*ast.Node, error)
)

// Parser parses one SEX source string into an ast.Node tree. Every
// prefix/infix parse function is responsible for consuming the tokens it
// recognizes and advancing cur past them, so cur always holds the first
// not-yet-consumed token on entry to parseExpression.
type Parser struct {
	l   *lexer.Lexer
	cur token.Token

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New returns a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixFns = map[token.Type]prefixParseFn{
		token.INT:    p.parseInt,
		token.STRING: p.parseStr,
		token.IDENT:  p.parseIdent,
		token.HASH:   p.parseSha,
		token.NOT:    p.parseNot,
		token.MINUS:  p.parseNegate,
		token.LPAREN: p.parseGrouped,
	}
	p.infixFns = map[token.Type]infixParseFn{
		token.OR:      p.parseBinary,
		token.AND:     p.parseBinary,
		token.EQ:      p.parseBinary,
		token.NEQ:     p.parseBinary,
		token.MATCH:   p.parseBinary,
		token.LT:      p.parseBinary,
		token.GT:      p.parseBinary,
		token.LE:      p.parseBinary,
		token.GE:      p.parseBinary,
		token.PLUS:    p.parseBinary,
		token.MINUS:   p.parseBinary,
		token.STAR:    p.parseBinary,
		token.SLASH:   p.parseBinary,
		token.PERCENT: p.parseBinary,
	}

	p.cur = p.l.NextToken()
	return p
}

func (p *Parser) next() { p.cur = p.l.NextToken() }

func (p *Parser) fail(msg string) error {
	return rtypes.New(rtypes.ErrKindSex, "column "+strconv.Itoa(p.l.Column())+": "+msg)
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// Parse parses src as a complete expression, requiring it to consume
// every token through EOF.
func Parse(src string) (*ast.Node, error) {
	p := New(lexer.New(src))
	node, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.EOF {
		return nil, p.fail("unexpected trailing token " + p.cur.Type.String())
	}
	return node, nil
}

func (p *Parser) parseExpression(precedence int) (*ast.Node, error) {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		return nil, p.fail("unexpected token " + p.cur.Type.String())
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for p.cur.Type != token.EOF && precedence < p.curPrecedence() {
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseInt() (*ast.Node, error) {
	v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
	if err != nil {
		return nil, p.fail("malformed integer literal " + p.cur.Literal)
	}
	p.next()
	return ast.NewInt(v), nil
}

func (p *Parser) parseStr() (*ast.Node, error) {
	node := ast.NewStr(p.cur.Literal)
	p.next()
	return node, nil
}

func (p *Parser) parseIdent() (*ast.Node, error) {
	fn, err := model.ParseFieldName(p.cur.Literal)
	if err != nil {
		return nil, p.fail("invalid field name " + p.cur.Literal)
	}
	p.next()
	return ast.NewName(fn), nil
}

// parseSha parses "#name" (spec.md §4.8 precedence 8).
func (p *Parser) parseSha() (*ast.Node, error) {
	p.next() // consume '#'
	if p.cur.Type != token.IDENT {
		return nil, p.fail("expected field name after #")
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	return ast.NewSha(name), nil
}

// parseNot parses unary "!" (spec.md §4.8 precedence 3): its operand is
// parsed at UNARY_NOT's own precedence, so higher-precedence operators
// (equality, relational, additive, multiplicative) are absorbed into the
// operand while lower ones ("&&", "||") are not.
func (p *Parser) parseNot() (*ast.Node, error) {
	op := p.cur.Type
	p.next()
	operand, err := p.parseExpression(UNARY_NOT)
	if err != nil {
		return nil, err
	}
	return ast.NewUnary(op, operand), nil
}

// parseNegate parses unary "-" at multiplicative precedence, so "-a+b"
// parses as "(-a)+b" rather than "-(a+b)". The grammar table (spec.md
// §4.8) only lists "-" as a binary additive operator; this provides the
// natural negation reading as 0-a.
func (p *Parser) parseNegate() (*ast.Node, error) {
	p.next()
	operand, err := p.parseExpression(MULTIPLICATIVE)
	if err != nil {
		return nil, err
	}
	return ast.NewBinary(token.MINUS, ast.NewInt(0), operand), nil
}

func (p *Parser) parseGrouped() (*ast.Node, error) {
	p.next() // consume '('
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.RPAREN {
		return nil, p.fail("expected )")
	}
	p.next()
	return expr, nil
}

func (p *Parser) parseBinary(left *ast.Node) (*ast.Node, error) {
	op := p.cur.Type
	prec := p.curPrecedence()
	p.next()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return ast.NewBinary(op, left, right), nil
}
