package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Interior Design", want: "interior-design"},
		{name: "already lowercase", input: "architecture", want: "architecture"},
		{name: "single word", input: "Landscape", want: "landscape"},
		{name: "punctuation marks", input: "Homes, Villas!", want: "homes-villas"},
		{name: "accented latin characters", input: "Café Résumé", want: "cafe-resume"},
		{name: "leading and trailing spaces", input: "  urban planning  ", want: "urban-planning"},
		{name: "multiple consecutive spaces collapsed", input: "urban    planning", want: "urban-planning"},
		{name: "multiple hyphens between words", input: "urban---planning", want: "urban-planning"},
		{name: "leading hyphens", input: "---urban", want: "urban"},
		{name: "numbers", input: "Projects 2026", want: "projects-2026"},
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"architecture", "interior-design", "a", "2026"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

func TestGenerate_ConsistentCase(t *testing.T) {
	for _, input := range []string{"INTERIOR DESIGN", "Interior Design", "iNtErIoR dEsIgN"} {
		if got := Generate(input); got != "interior-design" {
			t.Errorf("Generate(%q) = %q, want %q", input, got, "interior-design")
		}
	}
}

func TestGenerate_MaxLength(t *testing.T) {
	got := Generate(strings.Repeat("courtyard ", 40))
	if len(got) > MaxLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"architecture", true},
		{"interior-design", true},
		{"Interior-Design", false},
		{"interior design", false},
		{"-interior", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
