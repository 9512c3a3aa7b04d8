package recset

import "testing"

func rsetOfType(t *testing.T, typ string) *RSet {
	t.Helper()
	rs := NewRSet()
	if typ != "" {
		rs.SetType(typ)
	}
	return rs
}

func TestDBAppendAndLookupByType(t *testing.T) {
	db := NewDB()
	if err := db.AppendRSet(rsetOfType(t, "Contact")); err != nil {
		t.Fatalf("AppendRSet: %v", err)
	}
	if err := db.AppendRSet(rsetOfType(t, "Address")); err != nil {
		t.Fatalf("AppendRSet: %v", err)
	}

	if db.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", db.Size())
	}
	if !db.TypeP("Contact") {
		t.Fatalf("expected TypeP(Contact) to be true")
	}
	if db.GetRSetByType("Address") == nil {
		t.Fatalf("expected to find the Address RSet")
	}
	if db.GetRSetByType("Missing") != nil {
		t.Fatalf("expected no RSet for an unregistered type")
	}
}

func TestDBRejectsDuplicateType(t *testing.T) {
	db := NewDB()
	if err := db.AppendRSet(rsetOfType(t, "Contact")); err != nil {
		t.Fatalf("AppendRSet: %v", err)
	}
	if err := db.AppendRSet(rsetOfType(t, "Contact")); err == nil {
		t.Fatalf("expected an error appending a second RSet of the same type")
	}
}

func TestDBUntypedRSetsAreExempt(t *testing.T) {
	db := NewDB()
	if err := db.AppendRSet(rsetOfType(t, "")); err != nil {
		t.Fatalf("AppendRSet(untyped): %v", err)
	}
	if err := db.AppendRSet(rsetOfType(t, "")); err != nil {
		t.Fatalf("a second untyped RSet should not collide: %v", err)
	}
	if db.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", db.Size())
	}
}

func TestDBInsertAndRemove(t *testing.T) {
	db := NewDB()
	a := rsetOfType(t, "A")
	b := rsetOfType(t, "B")
	c := rsetOfType(t, "C")
	db.InsertRSet(a, 0)
	db.InsertRSet(c, 1)
	db.InsertRSet(b, 1)

	if db.GetRSet(0) != a || db.GetRSet(1) != b || db.GetRSet(2) != c {
		t.Fatalf("InsertRSet did not place records in expected order")
	}

	db.RemoveRSet(1)
	if db.Size() != 2 || db.GetRSet(1) != c {
		t.Fatalf("RemoveRSet did not remove the expected element")
	}
}
