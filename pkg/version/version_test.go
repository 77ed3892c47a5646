package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    ProtocolVersion
		wantErr bool
	}{
		{"1.0", ProtocolVersion{Major: 1, Minor: 0}, false},
		{"2.15", ProtocolVersion{Major: 2, Minor: 15}, false},
		{"1", ProtocolVersion{}, true},
		{"1.0.0", ProtocolVersion{}, true},
		{"a.b", ProtocolVersion{}, true},
		{".5", ProtocolVersion{}, true},
		{"1.", ProtocolVersion{}, true},
		{"", ProtocolVersion{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	v := ProtocolVersion{Major: 1, Minor: 2}
	if v.String() != "1.2" {
		t.Errorf("String() = %q, want %q", v.String(), "1.2")
	}
}

func TestCompatible(t *testing.T) {
	v1 := ProtocolVersion{Major: 1, Minor: 0}
	v11 := ProtocolVersion{Major: 1, Minor: 1}
	v2 := ProtocolVersion{Major: 2, Minor: 0}

	if !v1.Compatible(v11) {
		t.Error("1.0 should be compatible with 1.1")
	}
	if v1.Compatible(v2) {
		t.Error("1.0 should not be compatible with 2.0")
	}
}

func TestProtocolConstantParses(t *testing.T) {
	if _, err := Parse(Protocol); err != nil {
		t.Errorf("Protocol constant %q does not parse: %v", Protocol, err)
	}
}
