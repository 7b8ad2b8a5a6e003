// Package textnorm provides the text normalization used for literal
// comparisons over Turkish policy text: whitespace collapsing, Turkish-aware
// case folding and ASCII transliteration.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spaceRun = regexp.MustCompile(`\s+`)

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return spaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// RemoveSpace drops all whitespace. PDF extraction sometimes splits or joins
// words, so literal matching falls back to comparing without any spaces.
func RemoveSpace(s string) string {
	return spaceRun.ReplaceAllString(s, "")
}

var turkishLower = cases.Lower(language.Turkish)

// Lower lower-cases with Turkish rules (I -> ı, İ -> i) after NFC
// composition.
func Lower(s string) string {
	return turkishLower.String(norm.NFC.String(s))
}

// dotless maps the letters that do not decompose into base+mark.
var dotless = strings.NewReplacer("ı", "i", "İ", "i", "I", "i")

func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Fold maps s to a comparison key: Turkish lower-case, dotted/dotless i
// merged, diacritics removed. "SINIRSIZ", "sınırsız" and "Sinirsiz" share
// one key.
func Fold(s string) string {
	lowered := dotless.Replace(Lower(s))
	out, _, err := transform.String(stripMarks(), lowered)
	if err != nil {
		return lowered
	}
	return out
}

// EqualFold compares two strings by their Fold keys after whitespace
// collapsing.
func EqualFold(a, b string) bool {
	return Fold(CollapseSpace(a)) == Fold(CollapseSpace(b))
}

// ContainsFold reports whether needle occurs in haystack under Fold.
func ContainsFold(haystack, needle string) bool {
	n := Fold(CollapseSpace(needle))
	if n == "" {
		return false
	}
	return strings.Contains(Fold(CollapseSpace(haystack)), n)
}

// ASCII transliterates s for outputs limited to Latin-1 core fonts, keeping
// case: "Şirket Ünvanı" -> "Sirket Unvani".
func ASCII(s string) string {
	s = strings.NewReplacer("ı", "i", "İ", "I").Replace(s)
	out, _, err := transform.String(stripMarks(), s)
	if err != nil {
		return s
	}
	return out
}
