package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
		excludes []string
	}{
		{
			name:     "empty",
			source:   "",
			contains: nil,
		},
		{
			name:     "emphasis and paragraphs",
			source:   "Residential **villas**\n\nSecond paragraph",
			contains: []string{"<strong>villas</strong>", "<p>Second paragraph</p>"},
		},
		{
			name:     "hard wraps",
			source:   "Line one\nLine two",
			contains: []string{"Line one<br>"},
		},
		{
			name:     "autolink",
			source:   "See https://hsarchitects.com",
			contains: []string{`<a href="https://hsarchitects.com">`},
		},
		{
			name:     "raw html is not passed through",
			source:   "<script>alert(1)</script>",
			excludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("output %q should contain %q", got, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("output %q should not contain %q", got, s)
				}
			}
		})
	}
}
