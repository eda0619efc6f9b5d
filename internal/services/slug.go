package services

import (
	"regexp"
	"strings"
)

var (
	slugUnsafe    = regexp.MustCompile(`[^\w\s\p{Z}-]`)
	slugSeparator = regexp.MustCompile(`[\s\p{Z}_-]+`)
	slugEdges     = regexp.MustCompile(`^-+|-+$`)
)

// GenerateSlug lower-cases text, drops everything but ASCII word characters, whitespace
// and hyphens, collapses separator runs into one hyphen and trims hyphens at both ends.
// The result is empty when text has no ASCII word characters.
func GenerateSlug(text string) string {
	s := strings.ToLower(text)
	s = slugUnsafe.ReplaceAllString(s, "")
	s = slugSeparator.ReplaceAllString(s, "-")
	return slugEdges.ReplaceAllString(s, "")
}
