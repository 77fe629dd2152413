package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var reSpaces = regexp.MustCompile(`\s+`)

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func Int64Ptr(v int64) *int64 { return &v }

// OptionalString trims v and returns nil when nothing is left.
func OptionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// NonBlank is OptionalString for values that may already be absent.
func NonBlank(v *string) *string {
	if v == nil {
		return nil
	}
	return OptionalString(*v)
}

// Truncate cuts s to at most limit characters (runes, not bytes).
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// FoldAccents strips combining marks, so "Padrão" becomes "Padrao".
func FoldAccents(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}
