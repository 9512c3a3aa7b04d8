// Package lexer implements a lexical scanner for the selection-expression
// sublanguage (spec.md §4.8), grounded on the rune-scanning style of
// ha1tch/tsqlparser's lexer.
package lexer

import (
	"strings"

	"github.com/joshuapare/recdb/pkg/sex/token"
)

// Lexer scans a single SEX source string.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	column       int
}

// New creates a Lexer over input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Column returns the 1-based column of the byte most recently consumed,
// for error messages.
func (l *Lexer) Column() int { return l.column }

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	var tok token.Token
	switch l.ch {
	case 0:
		tok = token.Token{Type: token.EOF, Literal: ""}
	case '(':
		tok = token.Token{Type: token.LPAREN, Literal: "("}
	case ')':
		tok = token.Token{Type: token.RPAREN, Literal: ")"}
	case '#':
		tok = token.Token{Type: token.HASH, Literal: "#"}
	case '+':
		tok = token.Token{Type: token.PLUS, Literal: "+"}
	case '-':
		tok = token.Token{Type: token.MINUS, Literal: "-"}
	case '*':
		tok = token.Token{Type: token.STAR, Literal: "*"}
	case '/':
		tok = token.Token{Type: token.SLASH, Literal: "/"}
	case '%':
		tok = token.Token{Type: token.PERCENT, Literal: "%"}
	case '~':
		tok = token.Token{Type: token.MATCH, Literal: "~"}
	case '=':
		tok = token.Token{Type: token.EQ, Literal: "="}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NEQ, Literal: "!="}
		} else {
			tok = token.Token{Type: token.NOT, Literal: "!"}
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LE, Literal: "<="}
		} else {
			tok = token.Token{Type: token.LT, Literal: "<"}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GE, Literal: ">="}
		} else {
			tok = token.Token{Type: token.GT, Literal: ">"}
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = token.Token{Type: token.OR, Literal: "||"}
		} else {
			tok = token.Token{Type: token.ILLEGAL, Literal: "|"}
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = token.Token{Type: token.AND, Literal: "&&"}
		} else {
			tok = token.Token{Type: token.ILLEGAL, Literal: "&"}
		}
	case '"':
		lit, ok := l.readString()
		if !ok {
			tok = token.Token{Type: token.ILLEGAL, Literal: lit}
		} else {
			tok = token.Token{Type: token.STRING, Literal: lit}
		}
	default:
		switch {
		case isDigit(l.ch):
			return token.Token{Type: token.INT, Literal: l.readInt()}
		case isIdentStart(l.ch):
			return token.Token{Type: token.IDENT, Literal: l.readIdent()}
		default:
			tok = token.Token{Type: token.ILLEGAL, Literal: string(l.ch)}
		}
	}

	l.readChar()
	return tok
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '%'
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == ':'
}

func (l *Lexer) readInt() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readIdent() string {
	start := l.position
	for isIdentCont(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readString consumes a double-quoted string literal with C-style
// backslash escapes (spec.md §4.8), returning its decoded contents. l.ch
// is left on the closing quote; the caller advances past it.
func (l *Lexer) readString() (string, bool) {
	var b strings.Builder
	for {
		l.readChar()
		if l.ch == 0 {
			return b.String(), false
		}
		if l.ch == '"' {
			return b.String(), true
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 0:
				return b.String(), false
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				b.WriteByte(l.ch)
			}
			continue
		}
		b.WriteByte(l.ch)
	}
}
