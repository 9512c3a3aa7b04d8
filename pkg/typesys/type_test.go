package typesys

import "testing"

func TestParseDescriptorAndCheck(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		ok      string
		bad     string
		wantErr bool
	}{
		{name: "int", expr: "int", ok: "42", bad: "abc"},
		{name: "bool", expr: "bool", ok: "yes", bad: "maybe"},
		{name: "range", expr: "range 1 10", ok: "5", bad: "11"},
		{name: "real", expr: "real", ok: "3.14", bad: "abc"},
		{name: "size", expr: "size 3", ok: "abc", bad: "abcd"},
		{name: "line", expr: "line", ok: "a single line", bad: "two\nlines"},
		{name: "regexp", expr: "regexp /^a.*z$/", ok: "abcz", bad: "xyz"},
		{name: "date", expr: "date", ok: "2024-01-02", bad: "not-a-date"},
		{name: "enum", expr: "enum RED GREEN BLUE", ok: "RED", bad: "PURPLE"},
		{name: "field", expr: "field Name", ok: "Name", bad: "1Name"},
		{name: "email", expr: "email", ok: "a@b.com", bad: "not-an-email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := ParseDescriptor(tt.expr)
			if err != nil {
				t.Fatalf("ParseDescriptor(%q): %v", tt.expr, err)
			}
			if ok, msg := typ.Check(tt.ok); !ok {
				t.Fatalf("Check(%q) = false (%s), want true", tt.ok, msg)
			}
			if ok, _ := typ.Check(tt.bad); ok {
				t.Fatalf("Check(%q) = true, want false", tt.bad)
			}
		})
	}
}

func TestParseDescriptorErrors(t *testing.T) {
	for _, expr := range []string{"", "bogus", "range not-a-number 10", "regexp nodelims"} {
		if _, err := ParseDescriptor(expr); err == nil {
			t.Fatalf("ParseDescriptor(%q) expected error", expr)
		}
	}
}

func TestRangeAcceptsDotDotAndSpace(t *testing.T) {
	t1, err := ParseDescriptor("range 1..5")
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	if t1.Min != 1 || t1.Max != 5 {
		t.Fatalf("got min=%d max=%d, want 1,5", t1.Min, t1.Max)
	}
}
