// Package parser implements the streaming textual decoder (spec.md §4.9):
// bytes in, Field/Record/RSet/DB out, with precise per-line error
// reporting.
package parser

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/recset"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

// Parser is a single-pass, pull-based byte-stream decoder with one-byte
// pushback and a 1-based line counter (spec.md §4.9).
type Parser struct {
	r    *bufio.Reader
	file string
	line int

	pushed    bool
	pushedVal byte

	err *rtypes.Error
	eof bool
}

// New wraps r, decoding a leading UTF-8 BOM transparently and normalizing
// BOM-marked UTF-16 input to UTF-8; UTF-16 without a BOM is read as UTF-8
// (spec.md §1: the format is "7-bit friendly", but
// inputs may still arrive BOM-prefixed or UTF-16 encoded from editors or
// the Windows-side tooling this format is sometimes exchanged with),
// grounded on the teacher's decodeInputToBytes in
// internal/regtext/lexer.go, adapted here to use the ecosystem's BOM
// transform instead of a hand-rolled byte check.
func New(r io.Reader, file string) *Parser {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	tr := transform.NewReader(r, dec)
	return &Parser{r: bufio.NewReader(tr), file: file, line: 1}
}

// HasError reports whether the parser has recorded a terminal error.
func (p *Parser) HasError() bool { return p.err != nil }

// Err returns the recorded error, or nil.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// Eof reports whether the parser has consumed the entire input.
func (p *Parser) Eof() bool { return p.eof }

func (p *Parser) fail(kind rtypes.ErrKind, msg string) {
	if p.err == nil {
		p.err = rtypes.AtLine(kind, p.file, p.line, msg)
	}
}

// readByte reads one byte, honoring any pushed-back byte first.
func (p *Parser) readByte() (byte, bool) {
	if p.pushed {
		p.pushed = false
		if p.pushedVal == '\n' {
			p.line++
		}
		return p.pushedVal, true
	}
	b, err := p.r.ReadByte()
	if err != nil {
		p.eof = true
		return 0, false
	}
	if b == '\n' {
		p.line++
	}
	return b, true
}

// unreadByte pushes b back so the next readByte returns it again,
// correctly decrementing the line counter when b is '\n' (spec.md §9:
// "Parser's line counter and ungetc must correctly decrement the line
// counter when the pushed-back byte is \n").
func (p *Parser) unreadByte(b byte) {
	p.pushed = true
	p.pushedVal = b
	if b == '\n' {
		p.line--
	}
}

// skipBlankLinesAndComments consumes any run of blank lines and
// standalone comments that precede an RSet's content, per spec.md §6.1's
// `rset := { blank_line | comment } ...`. Comments encountered here are
// discarded per spec.md §8's boundary-behavior default (comments between
// RSets are not preserved).
func (p *Parser) skipBlankLinesAndComments() {
	for {
		b, ok := p.readByte()
		if !ok {
			return
		}
		switch {
		case b == '\n':
			continue
		case b == '#':
			p.consumeCommentBody()
		default:
			p.unreadByte(b)
			return
		}
	}
}

func (p *Parser) consumeCommentBody() string {
	var sb strings.Builder
	for {
		b, ok := p.readByte()
		if !ok {
			break
		}
		if b == '\n' {
			break
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

// parseFieldName reads a field-name token up to and including its
// terminating ':' (spec.md §6.1: `field_name := part ":" [ part ":" [
// part ":" ] ]`), returning the parsed FieldName.
func (p *Parser) parseFieldName() (*model.FieldName, bool) {
	fn := model.NewFieldName()
	var part strings.Builder
	partCount := 0
	for {
		b, ok := p.readByte()
		if !ok {
			p.fail(rtypes.ErrKindFormat, rtypes.ErrUnexpectedEOF.Msg)
			return nil, false
		}
		if b == ':' {
			if part.Len() == 0 {
				p.fail(rtypes.ErrKindFormat, rtypes.ErrExpectedFieldName.Msg)
				return nil, false
			}
			if !fn.Append(part.String()) {
				p.fail(rtypes.ErrKindFormat, rtypes.ErrTooManyNameParts.Msg)
				return nil, false
			}
			part.Reset()
			partCount++
			// Peek: is there another part, or is this the terminating ':'?
			nb, ok := p.readByte()
			if !ok {
				return fn, true
			}
			if nb == ' ' || nb == '\n' {
				p.unreadByte(nb)
				return fn, true
			}
			if partCount >= model.MaxNameParts {
				p.unreadByte(nb)
				return fn, true
			}
			part.WriteByte(nb)
			continue
		}
		part.WriteByte(b)
	}
}

// parseFieldValue reads the value bytes through the terminating '\n',
// handling the continuation rules: "\n+" / "\n+ " embed a literal '\n' in
// the value and keep reading; a '\\' immediately before '\n' elides the
// newline and keeps reading (spec.md §4.9, §6.1).
func (p *Parser) parseFieldValue() (string, bool) {
	var sb strings.Builder
	for {
		b, ok := p.readByte()
		if !ok {
			return sb.String(), true
		}
		if b == '\\' {
			nb, ok := p.readByte()
			if ok && nb == '\n' {
				continue // elided newline
			}
			sb.WriteByte(b)
			if ok {
				p.unreadByte(nb)
			}
			continue
		}
		if b != '\n' {
			sb.WriteByte(b)
			continue
		}
		// Saw '\n'; check for a continuation marker.
		nb, ok := p.readByte()
		if !ok {
			return sb.String(), true
		}
		if nb == '+' {
			sb.WriteByte('\n')
			sb2, ok := p.readByte()
			if ok && sb2 != ' ' {
				p.unreadByte(sb2)
			}
			continue
		}
		p.unreadByte(nb)
		return sb.String(), true
	}
}

// ParseField parses one field_name/value pair starting at the current
// position (the leading '#'/blank-line/EOF cases must already be ruled
// out by the caller).
func (p *Parser) ParseField() (*model.Field, bool) {
	startLine := p.line
	fn, ok := p.parseFieldName()
	if !ok {
		return nil, false
	}
	if b, ok := p.readByte(); ok && b == ' ' {
		// consumed single optional space
	} else if ok {
		p.unreadByte(b)
	}
	val, ok := p.parseFieldValue()
	if !ok {
		return nil, false
	}
	f := model.NewField(fn, val)
	f.SetLocation(p.file, startLine)
	return f, true
}

// ParseRecord parses one or more fields/comments terminated by a blank
// line or EOF; the first element must be a field (spec.md §4.9). Returns
// (nil, false) both at EOF before any content and on a hard error;
// HasError tells the two apart.
func (p *Parser) ParseRecord() (*model.Record, bool) {
	rec := model.NewRecord()
	first := true
	for {
		b, ok := p.readByte()
		if !ok {
			if first {
				return nil, false
			}
			return rec, true
		}
		switch {
		case b == '\n':
			return rec, true
		case b == '#':
			if first {
				p.fail(rtypes.ErrKindFormat, rtypes.ErrExpectedField.Msg)
				return nil, false
			}
			text := p.consumeCommentBody()
			rec.AppendComment(model.NewComment(text))
			first = false
		default:
			if first && !isPartStartByte(b) {
				p.fail(rtypes.ErrKindFormat, rtypes.ErrExpectedField.Msg)
				return nil, false
			}
			p.unreadByte(b)
			f, ok := p.ParseField()
			if !ok {
				return nil, false
			}
			rec.AppendField(f)
			first = false
		}
	}
}

func isPartStartByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '%'
}

// isDescriptorRecord reports whether rec carries a "%rec" field, per
// spec.md §3's descriptor definition.
func isDescriptorRecord(rec *model.Record) bool {
	fn, _ := model.ParseFieldName("%rec")
	return rec.FieldP(fn)
}

// ParseRSet parses one record set: optional descriptor followed by data
// records, stopping when a new descriptor record is encountered (which is
// not consumed -- it seeds the next RSet) or at EOF (spec.md §4.9).
//
// pending, if non-nil, is a record already parsed by the caller (the
// look-ahead record that ended the previous RSet); it is consumed as this
// RSet's first record instead of being re-parsed.
func (p *Parser) ParseRSet(pending *model.Record) (*recset.RSet, *model.Record, bool) {
	rs := recset.NewRSet()
	first := true

	consume := func(rec *model.Record) (stop bool, ok bool) {
		if first && isDescriptorRecord(rec) {
			rs.SetDescriptor(rec)
			first = false
			return false, true
		}
		first = false
		if isDescriptorRecord(rec) {
			return true, true
		}
		rs.AppendRecord(rec)
		return false, true
	}

	if pending != nil {
		if _, ok := consume(pending); !ok {
			return nil, nil, false
		}
	}

	for {
		p.skipBlankLinesAndComments()
		if p.eof {
			return rs, nil, true
		}
		rec, ok := p.ParseRecord()
		if !ok {
			if p.err != nil {
				return nil, nil, false
			}
			return rs, nil, true
		}
		stop, ok := consume(rec)
		if !ok {
			return nil, nil, false
		}
		if stop {
			return rs, rec, true
		}
	}
}

// ParseDB parses a full database: a sequence of RSets until EOF, failing
// with ErrDuplicatedRset if two RSets declare the same non-empty type
// (spec.md §4.9).
func (p *Parser) ParseDB() (*recset.DB, bool) {
	db := recset.NewDB()
	var pending *model.Record
	for {
		rs, next, ok := p.ParseRSet(pending)
		if !ok {
			return nil, false
		}
		if rs.NumRecords() > 0 || rs.Descriptor() != nil || rs.NumComments() > 0 {
			if err := db.AppendRSet(rs); err != nil {
				p.fail(rtypes.ErrKindFormat, err.Error())
				return nil, false
			}
		}
		if next == nil {
			return db, true
		}
		pending = next
	}
}
