package resolve

import (
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

func TestResolveNormalForm(t *testing.T) {
	rec := mkRecord(t, "Name", "Alice", "Email", "alice@example.com")

	var buf strings.Builder
	if err := Resolve(rec, "Name", &buf); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if buf.String() != "Name: Alice\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestResolveRawForm(t *testing.T) {
	rec := mkRecord(t, "Name", "Alice")

	var buf strings.Builder
	if err := Resolve(rec, "/Name", &buf); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if buf.String() != "Alice\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestResolveMultipleElementsAndMatches(t *testing.T) {
	rec := mkRecord(t, "Phone", "1", "Phone", "2", "Name", "Alice")

	var buf strings.Builder
	if err := Resolve(rec, "Phone, /Name", &buf); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := "Phone: 1\nPhone: 2\nAlice\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestResolveUnmatchedOrInvalidNameIsSilent(t *testing.T) {
	rec := mkRecord(t, "Name", "Alice")

	var buf strings.Builder
	if err := Resolve(rec, "Missing, %%%bad%%%, Name", &buf); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if buf.String() != "Name: Alice\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestCountOverRecord(t *testing.T) {
	rec := mkRecord(t, "Phone", "1", "Phone", "2", "Phone", "3")

	got, err := Count("Phone", rec)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != "3" {
		t.Fatalf("got %q, want %q", got, "3")
	}
}

func TestCountOverRSet(t *testing.T) {
	rs := recset.NewRSet()
	rs.AppendRecord(mkRecord(t, "Price", "10"))
	rs.AppendRecord(mkRecord(t, "Price", "20"))
	rs.AppendRecord(mkRecord(t, "Price", "15.5"))

	got, err := Count("Price", rs)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != "3" {
		t.Fatalf("got %q, want %q", got, "3")
	}
}

func TestSumOverRSetIntegral(t *testing.T) {
	rs := recset.NewRSet()
	rs.AppendRecord(mkRecord(t, "Price", "10"))
	rs.AppendRecord(mkRecord(t, "Price", "20"))

	got, err := Sum("Price", rs)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if got != "30" {
		t.Fatalf("got %q, want %q", got, "30")
	}
}

func TestSumOverRSetFractional(t *testing.T) {
	rs := recset.NewRSet()
	rs.AppendRecord(mkRecord(t, "Price", "10"))
	rs.AppendRecord(mkRecord(t, "Price", "20"))
	rs.AppendRecord(mkRecord(t, "Price", "15.5"))

	got, err := Sum("Price", rs)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if got != "45.500000" {
		t.Fatalf("got %q, want %q", got, "45.500000")
	}
}

func TestSumSkipsNonNumericValues(t *testing.T) {
	rs := recset.NewRSet()
	rs.AppendRecord(mkRecord(t, "Price", "10"))
	rs.AppendRecord(mkRecord(t, "Price", "n/a"))
	rs.AppendRecord(mkRecord(t, "Price", "5"))

	got, err := Sum("Price", rs)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if got != "15" {
		t.Fatalf("got %q, want %q", got, "15")
	}
}

func TestAggregatorCallDispatchesByName(t *testing.T) {
	rec := mkRecord(t, "Phone", "1", "Phone", "2")

	agg := NewAggregator()
	got, err := agg.Call("COUNT", "Phone", rec)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "2" {
		t.Fatalf("got %q, want %q", got, "2")
	}
}

func TestAggregatorCallUnknownFunction(t *testing.T) {
	rec := mkRecord(t, "Phone", "1")

	agg := NewAggregator()
	if _, err := agg.Call("average", "Phone", rec); err == nil {
		t.Fatal("expected an error for an unregistered aggregate function")
	}
}

func TestAggregatorRegisterCustomFunc(t *testing.T) {
	rec := mkRecord(t, "Phone", "1", "Phone", "2")

	agg := NewAggregator()
	agg.Register("first", func(fieldName string, target any) (string, error) {
		vals, err := fieldValues(fieldName, target)
		if err != nil || len(vals) == 0 {
			return "", err
		}
		return vals[0], nil
	})

	got, err := agg.Call("first", "Phone", rec)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "1" {
		t.Fatalf("got %q, want %q", got, "1")
	}

	// Two independent Aggregators never share registration state.
	other := NewAggregator()
	if _, err := other.Call("first", "Phone", rec); err == nil {
		t.Fatal("expected the custom registration not to leak into a new Aggregator")
	}
}
