// Package numfmt parses monetary and numeric text written in Turkish
// (2.500.000,75) or English (2,500,000.75) convention and renders amounts in
// the report's grouped form.
package numfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Format selects the separator convention used when parsing.
type Format int

const (
	// Turkish: '.' groups thousands, ',' separates decimals.
	Turkish Format = iota
	// English: ',' groups thousands, '.' separates decimals.
	English
	// Auto picks by whichever separator appears last.
	Auto
)

// ParseFormat maps a configuration keyword to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "turkish", "tr":
		return Turkish, nil
	case "english", "en":
		return English, nil
	case "auto":
		return Auto, nil
	}
	return Turkish, fmt.Errorf("unknown number format %q", s)
}

func (f Format) String() string {
	switch f {
	case Turkish:
		return "turkish"
	case English:
		return "english"
	case Auto:
		return "auto"
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// Number is a parsed decimal: an integer part and the decimal digits as
// written (no rounding).
type Number struct {
	Integer  int64
	Decimals string
}

// HasFraction reports whether any non-zero decimal digit is present.
func (n Number) HasFraction() bool {
	return strings.Trim(n.Decimals, "0") != ""
}

// Float returns the number as float64.
func (n Number) Float() float64 {
	if n.Decimals == "" {
		return float64(n.Integer)
	}
	f, err := strconv.ParseFloat(strconv.FormatInt(n.Integer, 10)+"."+n.Decimals, 64)
	if err != nil {
		return float64(n.Integer)
	}
	return f
}

// currency suffixes, longest first so ".-TL" wins over "TL".
var suffixes = []string{".-TL", "-TL", " TRY", "TRY", " TL", "TL", "₺", ".-", "-"}

// StripCurrency removes surrounding whitespace, a leading lira sign and one
// trailing currency marker.
func StripCurrency(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "₺"))
	for _, suf := range suffixes {
		if len(s) >= len(suf) && strings.EqualFold(s[len(s)-len(suf):], suf) {
			return strings.TrimSpace(s[:len(s)-len(suf)])
		}
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Parse interprets s under the given format after currency stripping.
// Internal spaces are ignored. ok is false when s is not a number.
func Parse(s string, f Format) (Number, bool) {
	cleaned := StripCurrency(s)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return Number{}, false
	}
	switch lower := strings.ToLower(cleaned); lower {
	case "none", "nan", "null":
		return Number{}, false
	}
	switch f {
	case Turkish:
		return parseWith(cleaned, '.', ',')
	case English:
		return parseWith(cleaned, ',', '.')
	}
	lastComma := strings.LastIndexByte(cleaned, ',')
	lastDot := strings.LastIndexByte(cleaned, '.')
	switch {
	case lastComma > lastDot:
		if lastDot < 0 && looksGroupedBy(cleaned, ',') {
			return parseWith(cleaned, ',', '.')
		}
		return parseWith(cleaned, '.', ',')
	case lastDot > lastComma:
		if lastComma < 0 && looksGroupedBy(cleaned, '.') {
			return parseWith(cleaned, '.', ',')
		}
		return parseWith(cleaned, ',', '.')
	}
	return parseWith(cleaned, '.', ',')
}

// looksGroupedBy reports whether sep appears only as a thousands separator:
// every group after the first has exactly three digits and there are at
// least two groups.
func looksGroupedBy(s string, sep byte) bool {
	parts := strings.Split(s, string(sep))
	if len(parts) < 2 {
		return false
	}
	if len(parts) == 2 && len(parts[1]) != 3 {
		return false
	}
	for i, p := range parts {
		if !allDigits(p) {
			return false
		}
		if i > 0 && len(p) != 3 {
			return false
		}
	}
	return true
}

func parseWith(s string, thousands, decimal byte) (Number, bool) {
	intPart, decPart := s, ""
	if i := strings.IndexByte(s, decimal); i >= 0 {
		if strings.IndexByte(s[i+1:], decimal) >= 0 {
			return Number{}, false
		}
		intPart, decPart = s[:i], s[i+1:]
		if !allDigits(decPart) {
			return Number{}, false
		}
	}
	intPart = strings.ReplaceAll(intPart, string(thousands), "")
	if intPart == "" && decPart != "" {
		intPart = "0"
	}
	if !allDigits(intPart) {
		return Number{}, false
	}
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Number{}, false
	}
	return Number{Integer: n, Decimals: decPart}, true
}

// ParseInt parses s and truncates any fraction.
func ParseInt(s string, f Format) (int64, bool) {
	n, ok := Parse(s, f)
	if !ok {
		return 0, false
	}
	return n.Integer, true
}

var numericRun = regexp.MustCompile(`\d[\d.,]*\d|\d`)

// FindNumber returns the first numeric-looking run in s ("Limit 2.500.000,00
// TL'dir" -> "2.500.000,00").
func FindNumber(s string) (string, bool) {
	m := numericRun.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}

// Group renders n with ',' between thousands: 2500000 -> "2,500,000".
func Group(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Amount renders a parsed number in the report's amount column form: grouped
// integer, decimals kept only when non-zero, padded with one space on each
// side (" 2,500,000 ").
func Amount(n Number) string {
	s := Group(n.Integer)
	if n.HasFraction() {
		s += "." + n.Decimals
	}
	return " " + s + " "
}

// Pad wraps s in the single leading and trailing space of the amount column.
func Pad(s string) string {
	return " " + strings.TrimSpace(s) + " "
}
