package voca

import (
	"regexp"
	"strings"
)

// crossReferenceMarkers start trailing annotations, checked in this order.
var crossReferenceMarkers = []string{"(=", "(→", "(↔"}

// markupRe matches a tag from "<" to the first ">" outside quoted attribute values.
// Stray quotes after a quoted value are consumed as part of the tag.
var markupRe = regexp.MustCompile(`<(?:"[^"]*"['"]*|'[^']*'['"]*|[^'">])+>`)

// StripMarkup removes inline tags and keeps the text between them
func StripMarkup(s string) string {
	return markupRe.ReplaceAllString(s, "")
}

// Truncate cuts meaning at the first cross-reference marker and trims spaces.
// Markers are applied one after another, each on what is left by the previous one.
func Truncate(s string) string {
	for _, marker := range crossReferenceMarkers {
		if i := strings.Index(s, marker); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// Normalize converts a raw meaning fragment into its canonical form
func Normalize(raw string) string {
	return StripMarkup(Truncate(raw))
}

// ParseInline builds Word from comma separated meanings.
// Empty segments are kept; parts of speech are absent.
func ParseInline(raw string) Word {
	segments := strings.Split(raw, ",")
	meanings := make([]string, 0, len(segments))
	for _, s := range segments {
		meanings = append(meanings, strings.TrimSpace(s))
	}
	return Word{Meanings: [][]string{meanings}}
}
