package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeTypeName upper-cases the first rune of a category name and
// leaves the remainder untouched: "food" and "Food" normalize to the same
// value, while "FOOD" stays "FOOD" and is a distinct category from "Food".
// Uniqueness checks compare these normalized names exactly; full case
// folding is deliberately not applied.
func NormalizeTypeName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
