// Package extract applies per-company regex field specifications to
// document text and assembles one raw record per document.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperifyio/policyregex/internal/record"
)

// Mode selects how a field's patterns are combined.
type Mode int

const (
	// ModeSingle applies one pattern and returns its group or null.
	ModeSingle Mode = iota
	// ModeFirst returns the first non-empty capture in pattern order.
	ModeFirst
	// ModeAll collects every capture of every pattern.
	ModeAll
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeFirst:
		return "first"
	case ModeAll:
		return "all"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a configuration keyword to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "single":
		return ModeSingle, nil
	case "first":
		return ModeFirst, nil
	case "all":
		return ModeAll, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Flags prepended to every pattern: case-insensitive, dot matches newline.
const Flags = "(?is)"

// Pattern is one compiled regex with the capture group it yields.
type Pattern struct {
	Source string
	Group  int
	re     *regexp.Regexp
}

// CompilePattern compiles source with Flags and checks that group exists.
func CompilePattern(source string, group int) (Pattern, error) {
	if strings.TrimSpace(source) == "" {
		return Pattern{}, fmt.Errorf("empty pattern")
	}
	if group < 0 {
		return Pattern{}, fmt.Errorf("negative group %d", group)
	}
	re, err := regexp.Compile(Flags + source)
	if err != nil {
		return Pattern{}, err
	}
	if group > re.NumSubexp() {
		return Pattern{}, fmt.Errorf("group %d out of range: pattern %q has %d capture groups", group, source, re.NumSubexp())
	}
	return Pattern{Source: source, Group: group, re: re}, nil
}

// MustCompilePattern is CompilePattern that panics on error, for tests and
// built-in tables.
func MustCompilePattern(source string, group int) Pattern {
	p, err := CompilePattern(source, group)
	if err != nil {
		panic(err)
	}
	return p
}

// capture returns the trimmed group text of one submatch index slice.
func (p Pattern) capture(text string, loc []int) string {
	i := 2 * p.Group
	if i+1 >= len(loc) || loc[i] < 0 {
		return ""
	}
	return strings.TrimSpace(text[loc[i]:loc[i+1]])
}

// First returns the group text of the first occurrence of p in text. An
// occurrence whose group is empty counts as no match; later occurrences are
// not considered.
func (p Pattern) First(text string) (string, bool) {
	loc := p.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false
	}
	v := p.capture(text, loc)
	return v, v != ""
}

// All returns the non-empty group text of every non-overlapping occurrence
// in order.
func (p Pattern) All(text string) []string {
	var out []string
	for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
		if v := p.capture(text, loc); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// FieldSpec is one field's extraction configuration.
type FieldSpec struct {
	Name        string
	Patterns    []Pattern
	Mode        Mode
	Description string
}

// Validate checks the structural invariants of a FieldSpec.
func (f *FieldSpec) Validate() error {
	if len(f.Patterns) == 0 {
		return fmt.Errorf("no patterns")
	}
	for i, p := range f.Patterns {
		if p.re == nil {
			return fmt.Errorf("pattern %d not compiled", i)
		}
	}
	switch f.Mode {
	case ModeSingle:
		if len(f.Patterns) != 1 {
			return fmt.Errorf("mode single takes exactly one pattern, got %d", len(f.Patterns))
		}
	case ModeFirst, ModeAll:
	default:
		return fmt.Errorf("unknown mode %v", f.Mode)
	}
	return nil
}

// Match applies the field to one document's text. ModeAll always yields a
// list (possibly empty); the other modes yield a string or null.
func (f *FieldSpec) Match(text string) record.Value {
	switch f.Mode {
	case ModeAll:
		out := []string{}
		for _, p := range f.Patterns {
			out = append(out, p.All(text)...)
		}
		return record.List(out)
	case ModeSingle:
		if v, ok := f.Patterns[0].First(text); ok {
			return record.String(v)
		}
		return record.Null()
	default:
		for _, p := range f.Patterns {
			if v, ok := p.First(text); ok {
				return record.String(v)
			}
		}
		return record.Null()
	}
}
