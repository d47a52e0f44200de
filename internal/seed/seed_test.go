package seed

import (
	"errors"
	"testing"
	"time"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"42", 42},
		{"  -7 ", -7},
		{"0", 0},
		{"9223372036854775807", 9223372036854775807},
	}

	for _, tt := range tests {
		s, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.in, err)
		}
		if s.Value != tt.want {
			t.Errorf("Parse(%q).Value = %d, want %d", tt.in, s.Value, tt.want)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := Parse(in); !errors.Is(err, ErrEmpty) {
			t.Errorf("Parse(%q) error = %v, want ErrEmpty", in, err)
		}
	}
}

func TestParsePhrase(t *testing.T) {
	a, err := Parse("ancient crypt")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if a.Text != "ancient crypt" {
		t.Errorf("Text = %q, want %q", a.Text, "ancient crypt")
	}

	b, _ := Parse("  Ancient   CRYPT ")
	if a.Value != b.Value {
		t.Errorf("phrase normalization: %d != %d", a.Value, b.Value)
	}

	c, _ := Parse("ancient crypts")
	if a.Value == c.Value {
		t.Errorf("different phrases produced the same seed %d", a.Value)
	}
}

func TestPhraseStable(t *testing.T) {
	if Phrase("dungeon") != Phrase("dungeon") {
		t.Error("Phrase is not deterministic")
	}
}

func TestParseOrNow(t *testing.T) {
	before := time.Now().UnixNano()
	s := ParseOrNow("")
	if s.Value < before {
		t.Errorf("ParseOrNow(\"\") = %d, want a time based value >= %d", s.Value, before)
	}

	if got := ParseOrNow("12"); got.Value != 12 {
		t.Errorf("ParseOrNow(\"12\") = %d, want 12", got.Value)
	}
}

func TestDerive(t *testing.T) {
	base := Seed{Text: "cave", Value: 100}

	if got := Derive(base, 0); got != base {
		t.Errorf("Derive(base, 0) = %v, want %v", got, base)
	}
	if got := Derive(base, 3); got.Value != 103 || got.Text != "103" {
		t.Errorf("Derive(base, 3) = %+v, want 103", got)
	}
}
