package model

import "testing"

func TestParseFieldName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "bare", input: "Name"},
		{name: "descriptor", input: "%rec"},
		{name: "qualified two parts", input: "Address:City"},
		{name: "qualified three parts", input: "A:B:C"},
		{name: "too many parts", input: "A:B:C:D", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "bad start char", input: "1Name", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ParseFieldName(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFieldName(%q) = nil error, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFieldName(%q) unexpected error: %v", tt.input, err)
			}
			if fn.ToString(RenderNormal) == "" {
				t.Fatalf("ToString returned empty for %q", tt.input)
			}
		})
	}
}

func TestFieldNameEqualVsEql(t *testing.T) {
	a, _ := ParseFieldName("Address:City")
	b, _ := ParseFieldName("City")
	c, _ := ParseFieldName("City")

	if Eql(a, b) {
		t.Fatalf("Eql should be strict: %v vs %v should not be equal", a, b)
	}
	if !Equal(a, b) {
		t.Fatalf("Equal should be role-based: %v should equal %v on last part", a, b)
	}
	if !Eql(b, c) {
		t.Fatalf("Eql(%v, %v) should hold for identical names", b, c)
	}
}

func TestFieldNameIsDescriptorField(t *testing.T) {
	fn, _ := ParseFieldName("%type")
	if !fn.IsDescriptorField() {
		t.Fatalf("%%type should be a descriptor field")
	}
	fn2, _ := ParseFieldName("Name")
	if fn2.IsDescriptorField() {
		t.Fatalf("Name should not be a descriptor field")
	}
}
