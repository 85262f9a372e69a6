package rpm

import (
	"testing"

	"github.com/kongove/scylla-artifact-tests/versionfmt"
)

func TestValid(t *testing.T) {
	tests := []struct {
		str string
		ok  bool
	}{
		{"2.0", true},
		{"2017.666", true},
		{"2.0.rc1", true},
		{"1:2.0-1.el7", true},
		{"(none):2.0-1", true},
		{"2.0~rc1", true},
		{versionfmt.MinVersion, true},
		{"", false},
		{"2.0 beta", false},
		{"-1:2.0", false},
	}

	var p parser
	for _, tt := range tests {
		if got := p.Valid(tt.str); got != tt.ok {
			t.Errorf("Valid(%q) = %v, want %v", tt.str, got, tt.ok)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2.0", "2.0", 0},
		{"2.0", "1.9", 1},
		{"2017.1", "2017.666", -1},
		{"2017.666", "2.0", 1},
		{"1.10", "1.9", 1},
		// Numeric segments are newer than alphabetic ones.
		{"2.0.1", "2.0.a", 1},
		{"2.0a", "2.0b", -1},
		// Trailing content wins.
		{"2.0", "2.0a", -1},
		// Tilde pre-releases sort first.
		{"2.0~rc1", "2.0", -1},
		{"2.0~rc1", "2.0~rc2", -1},
		// Epochs dominate.
		{"1:1.0", "2.0", 1},
		{"(none):2.0", "2.0", 0},
		// Releases break ties when both are present.
		{"2.0-1.el7", "2.0-2.el7", -1},
		{"2.0-1.el7", "2.0", 0},
		// Leading zeroes do not matter.
		{"2.01", "2.1", 0},
		// Sorting sentinels.
		{versionfmt.MinVersion, "0.0.1", -1},
		{versionfmt.MaxVersion, "9999", 1},
	}

	var p parser
	for _, tt := range tests {
		got, err := p.Compare(tt.a, tt.b)
		if err != nil {
			t.Errorf("Compare(%q, %q): %v", tt.a, tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRegistered(t *testing.T) {
	if _, exists := versionfmt.GetParser(ParserName); !exists {
		t.Fatalf("parser %q is not registered", ParserName)
	}
}
