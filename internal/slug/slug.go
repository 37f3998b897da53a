// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

// Package slug normalizes category slugs into their public URL form.
package slug

import (
	"strings"

	gslug "github.com/gosimple/slug"
)

// MaxLength caps generated slugs. Longer input is cut at a word boundary.
const MaxLength = 120

// Generate creates a URL-friendly slug from the given string.
// Example: "Interior Design" → "interior-design"
func Generate(s string) string {
	out := gslug.MakeLang(strings.TrimSpace(s), "en")
	if len(out) > MaxLength {
		out = out[:MaxLength]
		if i := strings.LastIndexByte(out, '-'); i > 0 {
			out = out[:i]
		}
	}
	return strings.Trim(out, "-_")
}

// Valid reports whether s is already in normalized form.
func Valid(s string) bool {
	return s != "" && len(s) <= MaxLength && gslug.IsSlug(s) && Generate(s) == s
}
