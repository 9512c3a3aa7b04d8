package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joshuapare/recdb/pkg/fex"
	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

func mkRecord(t *testing.T, pairs ...string) *model.Record {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("mkRecord requires name/value pairs")
	}
	rec := model.NewRecord()
	for i := 0; i < len(pairs); i += 2 {
		fn, err := model.ParseFieldName(pairs[i])
		if err != nil {
			t.Fatalf("ParseFieldName(%q): %v", pairs[i], err)
		}
		rec.AppendField(model.NewField(fn, pairs[i+1]))
	}
	return rec
}

func TestWriteFieldSexpMode(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, rtypes.Sexp)
	fn, _ := model.ParseFieldName("Name")
	if err := w.WriteField(model.NewField(fn, "Alice")); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, `"Name"`) || !strings.Contains(got, `"Alice"`) {
		t.Fatalf("sexp output missing expected parts: %q", got)
	}
}

func TestWriteRecordWithFexValuesOnly(t *testing.T) {
	rec := mkRecord(t, "Name", "Alice", "Email", "a@example.com", "Phone", "555")

	f, err := fex.New("Name Email", rtypes.FexSimple)
	if err != nil {
		t.Fatalf("fex.New: %v", err)
	}

	var buf bytes.Buffer
	w := New(&buf, rtypes.Normal)
	if err := w.WriteRecordWithFex(rec, f, true, false); err != nil {
		t.Fatalf("WriteRecordWithFex: %v", err)
	}
	want := "Alice\na@example.com\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteRecordWithFexRow(t *testing.T) {
	rec := mkRecord(t, "Name", "Alice", "Email", "a@example.com")
	f, _ := fex.New("Name Email", rtypes.FexSimple)

	var buf bytes.Buffer
	w := New(&buf, rtypes.Normal)
	if err := w.WriteRecordWithFex(rec, f, true, true); err != nil {
		t.Fatalf("WriteRecordWithFex: %v", err)
	}
	want := "Alice a@example.com\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteRecordWithFexFullFields(t *testing.T) {
	rec := mkRecord(t, "Name", "Alice", "Phone", "555")
	f, _ := fex.New("Name", rtypes.FexSimple)

	var buf bytes.Buffer
	w := New(&buf, rtypes.Normal)
	if err := w.WriteRecordWithFex(rec, f, false, false); err != nil {
		t.Fatalf("WriteRecordWithFex: %v", err)
	}
	want := "Name: Alice\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
