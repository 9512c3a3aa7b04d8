package model

import "testing"

func mkField(t *testing.T, name, value string) *Field {
	t.Helper()
	fn, err := ParseFieldName(name)
	if err != nil {
		t.Fatalf("ParseFieldName(%q): %v", name, err)
	}
	return NewField(fn, value)
}

func TestRecordGetFieldByNameRoleEquality(t *testing.T) {
	r := NewRecord()
	r.AppendField(mkField(t, "Name", "foo"))
	r.AppendField(mkField(t, "Type:Name:Email", "a@b.com"))

	email, _ := ParseFieldName("Email")
	f := r.GetFieldByName(email, 0)
	if f == nil {
		t.Fatalf("expected a field matching Email by role equality")
	}
	if f.Value() != "a@b.com" {
		t.Fatalf("got value %q, want a@b.com", f.Value())
	}
}

func TestRecordRemoveFieldByName(t *testing.T) {
	r := NewRecord()
	r.AppendField(mkField(t, "Tag", "1"))
	r.AppendField(mkField(t, "Tag", "2"))
	r.AppendField(mkField(t, "Tag", "3"))

	tag, _ := ParseFieldName("Tag")
	if n := r.RemoveFieldByName(tag, 1); n != 1 {
		t.Fatalf("RemoveFieldByName(index=1) removed %d, want 1", n)
	}
	if r.NumFieldsByName(tag) != 2 {
		t.Fatalf("expected 2 remaining Tag fields, got %d", r.NumFieldsByName(tag))
	}

	if n := r.RemoveFieldByName(tag, RemoveAllIndex); n != 2 {
		t.Fatalf("RemoveFieldByName(all) removed %d, want 2", n)
	}
	if r.NumFieldsByName(tag) != 0 {
		t.Fatalf("expected 0 remaining Tag fields")
	}
}

func TestRecordsEqualIsSymmetricSubset(t *testing.T) {
	a := NewRecord()
	a.AppendField(mkField(t, "Name", "x"))
	a.AppendField(mkField(t, "Age", "1"))

	b := NewRecord()
	b.AppendField(mkField(t, "Age", "1"))
	b.AppendField(mkField(t, "Name", "x"))

	if !RecordsEqual(a, b) {
		t.Fatalf("records with same fields in different order should be equal")
	}

	c := NewRecord()
	c.AppendField(mkField(t, "Name", "x"))
	if RecordsEqual(a, c) {
		t.Fatalf("records with different field counts should not be equal")
	}
}

func TestRecordDupIsIndependent(t *testing.T) {
	r := NewRecord()
	r.AppendField(mkField(t, "Name", "orig"))
	cp := r.Dup()
	cp.GetField(0).SetValue("changed")

	if r.GetField(0).Value() != "orig" {
		t.Fatalf("mutating the dup's field mutated the original")
	}
}

func TestRecordToComment(t *testing.T) {
	r := NewRecord()
	r.AppendField(mkField(t, "Name", "foo"))
	r.AppendComment(NewComment("note"))

	c := r.ToComment()
	if c == nil {
		t.Fatalf("ToComment returned nil")
	}
}
