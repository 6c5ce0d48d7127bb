package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldKey returns a comparison key for names and cities with whitespace
// collapsed and Unicode case folded.
func FoldKey(s string) string {
	return folder.String(NormalizeSpace(s))
}

// SameName reports whether two person or place names are equal after folding.
func SameName(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

// EscapeLike escapes the LIKE wildcards in a user supplied search term.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
