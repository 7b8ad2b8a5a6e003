package mapping

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/policyregex/internal/record"
	"github.com/hyperifyio/policyregex/internal/textnorm"
)

// MatchKind selects how an Entry recognizes a raw value.
type MatchKind int

const (
	// MatchNull matches only a null raw value.
	MatchNull MatchKind = iota
	// MatchPattern matches when a regex finds the value.
	MatchPattern
	// MatchExact matches a literal under Turkish-aware folding.
	MatchExact
	// MatchContains matches when the literal occurs in the value.
	MatchContains
)

// Transform post-processes the capture of an amount entry.
type Transform int

const (
	TransformNone Transform = iota
	// TransformTurkish parses the capture as a Turkish-format number.
	TransformTurkish
	// TransformSimple swaps '.' for ',' and pads the capture.
	TransformSimple
)

// Entry is one ordered item of a rule's mapping list.
type Entry struct {
	Kind    MatchKind
	Literal string
	Pattern *regexp.Regexp
	// Output is returned when the entry matches and HasOutput is set.
	Output    record.Value
	HasOutput bool
	// Multiplier scales a parsed number; zero means none.
	Multiplier float64
	Transform  Transform
	// Group is the capture fed to Transform or Multiplier.
	Group int
}

// patternFlags mirrors the extraction engine: case-insensitive, dot matches
// newline.
const patternFlags = "(?is)"

func compileEntryPattern(src string) (*regexp.Regexp, error) {
	return regexp.Compile(patternFlags + src)
}

// match tests a non-null raw string. It returns the capture selected by
// Group (the whole match when the pattern has no such group) for pattern
// entries, the trimmed value otherwise.
func (e *Entry) match(value string) (string, bool) {
	collapsed := textnorm.CollapseSpace(value)
	switch e.Kind {
	case MatchPattern:
		for _, candidate := range []string{collapsed, textnorm.Fold(collapsed)} {
			loc := e.Pattern.FindStringSubmatchIndex(candidate)
			if loc == nil {
				continue
			}
			g := e.Group
			if 2*g+1 >= len(loc) || loc[2*g] < 0 {
				g = 0
			}
			return strings.TrimSpace(candidate[loc[2*g]:loc[2*g+1]]), true
		}
		return "", false
	case MatchExact:
		if textnorm.EqualFold(collapsed, e.Literal) {
			return collapsed, true
		}
		if textnorm.Fold(textnorm.RemoveSpace(value)) == textnorm.Fold(textnorm.RemoveSpace(e.Literal)) {
			return collapsed, true
		}
		return "", false
	case MatchContains:
		if textnorm.ContainsFold(collapsed, e.Literal) {
			return collapsed, true
		}
		needle := textnorm.Fold(textnorm.RemoveSpace(e.Literal))
		if needle != "" && strings.Contains(textnorm.Fold(textnorm.RemoveSpace(value)), needle) {
			return collapsed, true
		}
		return "", false
	}
	return "", false
}

// firstMatch returns the first entry in entries matching value.
func firstMatch(entries []Entry, value string) (*Entry, string, bool) {
	for i := range entries {
		e := &entries[i]
		if e.Kind == MatchNull {
			continue
		}
		if capture, ok := e.match(value); ok {
			return e, capture, true
		}
	}
	return nil, "", false
}

// nullEntry returns the first null-sentinel entry.
func nullEntry(entries []Entry) (*Entry, bool) {
	for i := range entries {
		if entries[i].Kind == MatchNull {
			return &entries[i], true
		}
	}
	return nil, false
}

// Sentinel maps a literal phrase, matched by folded containment, to a fixed
// output ("SINIRSIZ" -> " 999,999,999 ").
type Sentinel struct {
	Phrase string
	Output record.Value
}
