package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joshuapare/recdb/internal/writer"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

func TestSimpleParseWriteRoundTrip(t *testing.T) {
	input := "Name: Alice\nEmail: a@example.com\n\nName: Bob\nEmail: b@example.com\n"
	p := New(strings.NewReader(input), "test.rec")
	db, ok := p.ParseDB()
	if !ok {
		t.Fatalf("ParseDB failed: %v", p.Err())
	}
	if db.Size() != 1 {
		t.Fatalf("expected 1 RSet, got %d", db.Size())
	}
	rs := db.GetRSet(0)
	if rs.NumRecords() != 2 {
		t.Fatalf("expected 2 records, got %d", rs.NumRecords())
	}

	var buf bytes.Buffer
	w := writer.New(&buf, rtypes.Normal)
	if err := w.WriteDB(db); err != nil {
		t.Fatalf("WriteDB: %v", err)
	}
	if buf.String() != input {
		t.Fatalf("round trip mismatch:\n got: %q\nwant: %q", buf.String(), input)
	}
}

func TestMultilineValue(t *testing.T) {
	input := "Desc: line one\n+ line two\n+\n+ line four\n"
	p := New(strings.NewReader(input), "test.rec")
	db, ok := p.ParseDB()
	if !ok {
		t.Fatalf("ParseDB failed: %v", p.Err())
	}
	rs := db.GetRSet(0)
	rec := rs.GetRecord(0)
	f := rec.GetField(0)
	want := "line one\nline two\n\nline four"
	if f.Value() != want {
		t.Fatalf("got value %q, want %q", f.Value(), want)
	}

	var buf bytes.Buffer
	w := writer.New(&buf, rtypes.Normal)
	if err := w.WriteDB(db); err != nil {
		t.Fatalf("WriteDB: %v", err)
	}
	if buf.String() != input {
		t.Fatalf("round trip mismatch:\n got: %q\nwant: %q", buf.String(), input)
	}
}

func TestEmptyInputYieldsEmptyDB(t *testing.T) {
	p := New(strings.NewReader(""), "empty.rec")
	db, ok := p.ParseDB()
	if !ok {
		t.Fatalf("ParseDB failed on empty input: %v", p.Err())
	}
	if db.Size() != 0 {
		t.Fatalf("expected an empty DB, got %d RSets", db.Size())
	}
}

func TestDuplicateRecordSetTypeIsAnError(t *testing.T) {
	input := "%rec: Contact\n\nName: Alice\n\n%rec: Contact\n\nName: Bob\n"
	p := New(strings.NewReader(input), "dup.rec")
	if _, ok := p.ParseDB(); ok {
		t.Fatalf("expected a duplicated-record-set error")
	}
	if !p.HasError() {
		t.Fatalf("expected HasError() to be true")
	}
}

func TestDescriptorStartsNewRSetAndSeedsNext(t *testing.T) {
	input := "%rec: Contact\n%key: Id\n\nId: 1\n\n%rec: Address\n\nCity: NYC\n"
	p := New(strings.NewReader(input), "multi.rec")
	db, ok := p.ParseDB()
	if !ok {
		t.Fatalf("ParseDB failed: %v", p.Err())
	}
	if db.Size() != 2 {
		t.Fatalf("expected 2 RSets, got %d", db.Size())
	}
	if db.GetRSet(0).Type() != "Contact" {
		t.Fatalf("expected first RSet type Contact, got %q", db.GetRSet(0).Type())
	}
	if db.GetRSet(1).Type() != "Address" {
		t.Fatalf("expected second RSet type Address, got %q", db.GetRSet(1).Type())
	}
}
