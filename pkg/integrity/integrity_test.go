package integrity

import (
	"io"
	"strings"
	"testing"

	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/recset"
)

func field(t *testing.T, name, value string) *model.Field {
	t.Helper()
	fn, err := model.ParseFieldName(name)
	if err != nil {
		t.Fatalf("ParseFieldName(%q): %v", name, err)
	}
	return model.NewField(fn, value)
}

func mkRecord(t *testing.T, pairs ...string) *model.Record {
	t.Helper()
	rec := model.NewRecord()
	for i := 0; i < len(pairs); i += 2 {
		rec.AppendField(field(t, pairs[i], pairs[i+1]))
	}
	return rec
}

func mkDescriptor(t *testing.T, pairs ...string) *model.Record {
	return mkRecord(t, pairs...)
}

func TestCheckDBKeyUniqueness(t *testing.T) {
	rs := recset.NewRSet()
	rs.SetDescriptor(mkDescriptor(t, "%rec", "Contact", "%key", "Email"))
	rs.AppendRecord(mkRecord(t, "Email", "a@example.com"))
	rs.AppendRecord(mkRecord(t, "Email", "b@example.com"))
	rs.AppendRecord(mkRecord(t, "Email", "a@example.com"))

	db := recset.NewDB()
	if err := db.AppendRSet(rs); err != nil {
		t.Fatalf("AppendRSet: %v", err)
	}

	sink := &SliceSink{}
	n := CheckDB(db, Options{CheckDescriptors: true}, sink)
	if n != 1 {
		t.Fatalf("expected exactly one violation, got %d: %v", n, sink.Violations)
	}
	msg := sink.Violations[0].Message
	if !strings.Contains(msg, "duplicated key value") || !strings.Contains(msg, "record 0") {
		t.Fatalf("unexpected violation message: %q", msg)
	}
}

func TestCheckDBKeyMissingOrDuplicated(t *testing.T) {
	rs := recset.NewRSet()
	rs.SetDescriptor(mkDescriptor(t, "%rec", "Contact", "%key", "Email"))
	rs.AppendRecord(mkRecord(t, "Email", "a@example.com", "Email", "b@example.com"))

	db := recset.NewDB()
	_ = db.AppendRSet(rs)

	sink := &SliceSink{}
	n := CheckDB(db, Options{CheckDescriptors: true}, sink)
	if n != 1 {
		t.Fatalf("expected one violation for a doubled key field, got %d: %v", n, sink.Violations)
	}
}

func TestCheckDBTypeChecking(t *testing.T) {
	rs := recset.NewRSet()
	rs.SetDescriptor(mkDescriptor(t, "%rec", "Contact", "%type", "Age int"))
	rs.AppendRecord(mkRecord(t, "Age", "not-a-number"))
	rs.AppendRecord(mkRecord(t, "Age", "30"))

	db := recset.NewDB()
	_ = db.AppendRSet(rs)

	sink := &SliceSink{}
	n := CheckDB(db, Options{CheckDescriptors: true}, sink)
	if n != 1 {
		t.Fatalf("expected one type violation, got %d: %v", n, sink.Violations)
	}
	if !strings.Contains(sink.Violations[0].Message, "Age") {
		t.Fatalf("violation should name the failing field: %q", sink.Violations[0].Message)
	}
}

func TestCheckDBMandatoryUniqueProhibit(t *testing.T) {
	rs := recset.NewRSet()
	rs.SetDescriptor(mkDescriptor(t,
		"%rec", "Contact",
		"%mandatory", "Email",
		"%unique", "Phone",
		"%prohibit", "Internal",
	))
	rs.AppendRecord(mkRecord(t, "Phone", "1", "Phone", "2", "Internal", "x"))

	db := recset.NewDB()
	_ = db.AppendRSet(rs)

	sink := &SliceSink{}
	n := CheckDB(db, Options{CheckDescriptors: true}, sink)
	if n != 3 {
		t.Fatalf("expected 3 violations (missing mandatory, doubled unique, present prohibit), got %d: %v", n, sink.Violations)
	}
}

func TestCheckDBRSetSizeBound(t *testing.T) {
	rs := recset.NewRSet()
	rs.SetDescriptor(mkDescriptor(t, "%rec", "Contact", "%size", "2"))
	rs.AppendRecord(mkRecord(t, "Name", "a"))

	db := recset.NewDB()
	_ = db.AppendRSet(rs)

	sink := &SliceSink{}
	n := CheckDB(db, Options{CheckDescriptors: true}, sink)
	if n != 1 {
		t.Fatalf("expected one size-bound violation, got %d: %v", n, sink.Violations)
	}
}

func TestCheckDBDescriptorValidationShortCircuits(t *testing.T) {
	rs := recset.NewRSet()
	// Two %rec fields: invalid. Per-record checks must not also run.
	rs.SetDescriptor(mkDescriptor(t, "%rec", "Contact", "%rec", "Other", "%mandatory", "Email"))
	rs.AppendRecord(mkRecord(t)) // would also violate %mandatory if checked

	db := recset.NewDB()
	_ = db.AppendRSet(rs)

	sink := &SliceSink{}
	n := CheckDB(db, Options{CheckDescriptors: true}, sink)
	if n != 1 {
		t.Fatalf("expected only the descriptor violation, got %d: %v", n, sink.Violations)
	}
}

func TestCheckDBAutoFieldMustBeTypedIntRangeOrDate(t *testing.T) {
	rs := recset.NewRSet()
	rs.SetDescriptor(mkDescriptor(t, "%rec", "Contact", "%type", "Name line", "%auto", "Name"))

	db := recset.NewDB()
	_ = db.AppendRSet(rs)

	sink := &SliceSink{}
	n := CheckDB(db, Options{CheckDescriptors: true}, sink)
	if n != 1 {
		t.Fatalf("expected one violation for a non int/range/date auto field, got %d: %v", n, sink.Violations)
	}
}

func TestCheckRecordValidatesWithoutWholeSetSizeCheck(t *testing.T) {
	rs := recset.NewRSet()
	rs.SetDescriptor(mkDescriptor(t, "%rec", "Contact", "%mandatory", "Email"))
	rec := mkRecord(t)

	sink := &SliceSink{}
	n := CheckRecord(nil, rs, nil, rec, sink)
	if n != 1 {
		t.Fatalf("expected one mandatory violation, got %d: %v", n, sink.Violations)
	}
}

type fakeFetcher struct{ body string }

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func (f fakeFetcher) Fetch(ref string) (io.ReadCloser, error) {
	return nopCloser{strings.NewReader(f.body)}, nil
}

func TestCheckDBRemoteDescriptorMerge(t *testing.T) {
	rs := recset.NewRSet()
	rs.SetDescriptor(mkDescriptor(t, "%rec", "Contact remote.rec"))
	rs.AppendRecord(mkRecord(t, "Age", "not-a-number"))

	db := recset.NewDB()
	_ = db.AppendRSet(rs)

	fetcher := fakeFetcher{body: "%rec: Contact\n%type: Age int\n\n"}
	sink := &SliceSink{}
	n := CheckDB(db, Options{CheckDescriptors: true, UseRemote: true, Fetcher: fetcher}, sink)
	if n != 1 {
		t.Fatalf("expected the merged %%type: to catch the bad Age value, got %d: %v", n, sink.Violations)
	}

	// Descriptor is restored after the check.
	if rs.RemoteRef() != "remote.rec" {
		t.Fatalf("expected the original descriptor (with its remote ref) to be restored")
	}
	if _, ok := rs.Types().LookupName("Age"); ok {
		t.Fatalf("expected the merged type registration not to leak past the check")
	}
}
