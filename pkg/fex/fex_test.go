package fex

import (
	"testing"

	"github.com/joshuapare/recdb/pkg/model"
	"github.com/joshuapare/recdb/pkg/rtypes"
)

func TestNewSimple(t *testing.T) {
	f, err := New("Name Email Phone", rtypes.FexSimple)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Size() != 3 {
		t.Fatalf("got %d elements, want 3", f.Size())
	}
	e, _ := f.Get(0)
	if e.Min != All || e.Max != All {
		t.Fatalf("simple fex elements should default to All subscripts")
	}
}

func TestNewSubscripted(t *testing.T) {
	f, err := New("Phone[0],Phone[1-3],Email", rtypes.FexSubscripted)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Size() != 3 {
		t.Fatalf("got %d elements, want 3", f.Size())
	}
	e0, _ := f.Get(0)
	if e0.Min != 0 || e0.Max != 0 {
		t.Fatalf("Phone[0] => min=max=0, got min=%d max=%d", e0.Min, e0.Max)
	}
	e1, _ := f.Get(1)
	if e1.Min != 1 || e1.Max != 3 {
		t.Fatalf("Phone[1-3] => min=1 max=3, got min=%d max=%d", e1.Min, e1.Max)
	}
	e2, _ := f.Get(2)
	if e2.Min != All || e2.Max != All {
		t.Fatalf("Email with no subscript should default to All")
	}
}

func TestNamesRoleEquality(t *testing.T) {
	f, err := New("Type:Name:Email", rtypes.FexSimple)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	email, _ := model.ParseFieldName("Email")
	if !f.Names(email) {
		t.Fatalf("Names should match by role equality")
	}
}

func TestSortTreatsAllAsSmallest(t *testing.T) {
	f := &FEX{}
	name, _ := model.ParseFieldName("A")
	f.Append(name, 2, 2)
	f.Append(name, All, All)
	f.Append(name, 0, 1)

	f.Sort()

	e0, _ := f.Get(0)
	if e0.Min != All {
		t.Fatalf("expected All subscript to sort first, got min=%d", e0.Min)
	}
	e1, _ := f.Get(1)
	if e1.Min != 0 {
		t.Fatalf("expected min=0 second, got %d", e1.Min)
	}
	e2, _ := f.Get(2)
	if e2.Min != 2 {
		t.Fatalf("expected min=2 last, got %d", e2.Min)
	}
}

func TestMalformedSubscript(t *testing.T) {
	if _, err := New("Phone[abc]", rtypes.FexSubscripted); err == nil {
		t.Fatalf("expected error for malformed subscript")
	}
	if _, err := New("Phone[1", rtypes.FexSubscripted); err == nil {
		t.Fatalf("expected error for unterminated subscript")
	}
}
