// Package mapping turns raw extracted values into business-canonical values
// using declarative per-field rules.
package mapping

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperifyio/policyregex/internal/numfmt"
	"github.com/hyperifyio/policyregex/internal/record"
	"github.com/hyperifyio/policyregex/internal/textnorm"
)

// Type is the tag of a mapping rule.
type Type string

const (
	TypeFixedValue          Type = "fixed_value"
	TypePatternToValue      Type = "pattern_to_value"
	TypeAmountNormalization Type = "amount_normalization"
	TypeDurationExtraction  Type = "duration_extraction"
	TypeNumericConversion   Type = "numeric_conversion"
)

// Rule is one field's normalization. The set of implementations is closed:
// FixedValue, PatternToValue, AmountNormalization, DurationExtraction and
// NumericConversion. Normalize never fails; values it cannot map degrade to
// the rule's default or null.
type Rule interface {
	Type() Type
	Normalize(raw record.Value) record.Value
	rule()
}

// Default is an optional fallback value. Set distinguishes an explicit
// `"default": null` from an absent key.
type Default struct {
	Value record.Value
	Set   bool
}

// Or returns the default when set, otherwise v.
func (d Default) Or(v record.Value) record.Value {
	if d.Set {
		return d.Value
	}
	return v
}

// FixedValue ignores the raw value and returns a constant.
type FixedValue struct {
	Output record.Value
}

func (FixedValue) Type() Type { return TypeFixedValue }
func (FixedValue) rule()      {}

func (r FixedValue) Normalize(record.Value) record.Value { return r.Output }

// PatternToValue maps a raw value to the output of the first matching entry.
// A list is scanned item by item and the first item matching any entry
// decides.
type PatternToValue struct {
	Entries []Entry
	Default Default
}

func (PatternToValue) Type() Type { return TypePatternToValue }
func (PatternToValue) rule()      {}

func (r PatternToValue) Normalize(raw record.Value) record.Value {
	if raw.IsNull() {
		if e, ok := nullEntry(r.Entries); ok {
			return e.Output
		}
		return r.Default.Or(raw)
	}
	if raw.Empty() {
		return r.Default.Or(raw)
	}
	for _, s := range scalars(raw) {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if e, _, ok := firstMatch(r.Entries, s); ok {
			return e.Output
		}
	}
	return r.Default.Or(raw)
}

// AmountNormalization renders monetary text as a padded, comma-grouped
// amount (" 2,500,000 "). Sentinel phrases are checked first, then entries,
// then the built-in Turkish-format parse.
type AmountNormalization struct {
	Sentinels []Sentinel
	Entries   []Entry
	Default   Default
}

func (AmountNormalization) Type() Type { return TypeAmountNormalization }
func (AmountNormalization) rule()      {}

func (r AmountNormalization) Normalize(raw record.Value) record.Value {
	if raw.Empty() {
		return r.Default.Or(record.Null())
	}
	for _, s := range scalars(raw) {
		if v, ok := r.amount(s); ok {
			return v
		}
	}
	return r.Default.Or(record.Null())
}

func (r AmountNormalization) amount(s string) (record.Value, bool) {
	if strings.TrimSpace(s) == "" {
		return record.Value{}, false
	}
	for _, sn := range r.Sentinels {
		if textnorm.ContainsFold(s, sn.Phrase) {
			return sn.Output, true
		}
	}
	for i := range r.Entries {
		e := &r.Entries[i]
		if e.Kind == MatchNull {
			continue
		}
		capture, ok := e.match(s)
		if !ok {
			continue
		}
		if e.HasOutput {
			return e.Output, true
		}
		if out, ok := applyTransform(e.Transform, capture); ok {
			return record.String(out), true
		}
	}
	if out, ok := turkishAmount(s); ok {
		return record.String(out), true
	}
	return record.Value{}, false
}

func applyTransform(t Transform, capture string) (string, bool) {
	switch t {
	case TransformSimple:
		if capture == "" {
			return "", false
		}
		return numfmt.Pad(strings.ReplaceAll(capture, ".", ",")), true
	default:
		return turkishAmount(capture)
	}
}

func turkishAmount(s string) (string, bool) {
	digits, ok := numfmt.FindNumber(numfmt.StripCurrency(s))
	if !ok {
		return "", false
	}
	n, ok := numfmt.Parse(digits, numfmt.Turkish)
	if !ok {
		return "", false
	}
	return numfmt.Amount(n), true
}

// DurationPattern pulls one duration candidate out of a clause.
type DurationPattern struct {
	Source string
	Group  int
	re     *regexp.Regexp
}

// NewDurationPattern compiles src. A negative group selects group 1 when the
// pattern has a capture group, otherwise the whole match.
func NewDurationPattern(src string, group int) (DurationPattern, error) {
	re, err := compileEntryPattern(src)
	if err != nil {
		return DurationPattern{}, err
	}
	if group < 0 {
		group = 0
		if re.NumSubexp() > 0 {
			group = 1
		}
	}
	if group > re.NumSubexp() {
		return DurationPattern{}, fmt.Errorf("group %d out of range: pattern %q has %d capture groups", group, src, re.NumSubexp())
	}
	return DurationPattern{Source: src, Group: group, re: re}, nil
}

func (p DurationPattern) match(s string) (string, bool) {
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[p.Group])
	return v, v != ""
}

// DurationExtraction picks the largest duration mentioned across the
// clauses of a raw value and returns it as a decimal string. Mappings,
// matched exactly, rewrite the selected value.
type DurationExtraction struct {
	Patterns []DurationPattern
	Mappings []Entry
	Default  Default
}

func (DurationExtraction) Type() Type { return TypeDurationExtraction }
func (DurationExtraction) rule()      {}

func (r DurationExtraction) Normalize(raw record.Value) record.Value {
	var found []string
	for _, item := range scalars(raw) {
		if strings.TrimSpace(item) == "" {
			continue
		}
		if len(r.Patterns) == 0 {
			found = append(found, strings.TrimSpace(item))
			continue
		}
		for _, p := range r.Patterns {
			if v, ok := p.match(item); ok {
				found = append(found, v)
			}
		}
	}
	if len(found) == 0 {
		return r.Default.Or(record.Null())
	}
	selected := found[0]
	best := int64(-1)
	for _, v := range found {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			continue
		}
		if n > best {
			best = n
		}
	}
	if best >= 0 {
		selected = strconv.FormatInt(best, 10)
	}
	if e, _, ok := firstMatch(r.Mappings, selected); ok {
		return e.Output
	}
	return record.String(selected)
}

// NumericConversion parses a raw value into an integer. A matching entry may
// supply the output directly or scale the parsed value by a multiplier.
type NumericConversion struct {
	Entries []Entry
	Format  numfmt.Format
	Default Default
}

func (NumericConversion) Type() Type { return TypeNumericConversion }
func (NumericConversion) rule()      {}

func (r NumericConversion) Normalize(raw record.Value) record.Value {
	if n, ok := raw.IntValue(); ok {
		return record.Int(n)
	}
	if f, ok := raw.FloatValue(); ok {
		return record.Int(int64(f))
	}
	if raw.Empty() {
		return r.Default.Or(record.Null())
	}
	for _, s := range scalars(raw) {
		if n, ok := r.convert(s); ok {
			return record.Int(n)
		}
	}
	return r.Default.Or(record.Null())
}

func (r NumericConversion) convert(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if e, _, ok := firstMatch(r.Entries, s); ok {
		if e.Multiplier != 0 {
			n, ok := numfmt.Parse(s, r.Format)
			if !ok {
				return 0, false
			}
			return int64(math.Round(n.Float() * e.Multiplier)), true
		}
		if e.HasOutput {
			return integerOf(e.Output)
		}
	}
	return numfmt.ParseInt(s, r.Format)
}

// integerOf converts a configured output to an integer.
func integerOf(v record.Value) (int64, bool) {
	if n, ok := v.IntValue(); ok {
		return n, true
	}
	if f, ok := v.FloatValue(); ok {
		return int64(f), true
	}
	if s, ok := v.Str(); ok {
		return numfmt.ParseInt(s, numfmt.Auto)
	}
	return 0, false
}

// scalars views a raw value as its string items: a list's elements, a
// string as one item, a number in decimal form.
func scalars(v record.Value) []string {
	switch v.Kind() {
	case record.KindString:
		s, _ := v.Str()
		return []string{s}
	case record.KindList:
		items, _ := v.Items()
		return items
	case record.KindInt:
		n, _ := v.IntValue()
		return []string{strconv.FormatInt(n, 10)}
	case record.KindFloat:
		f, _ := v.FloatValue()
		return []string{strconv.FormatFloat(f, 'f', -1, 64)}
	}
	return nil
}

// typeOf resolves a configured type name, including the legacy alias.
func typeOf(s string) (Type, error) {
	switch Type(s) {
	case TypeFixedValue, TypePatternToValue, TypeAmountNormalization, TypeDurationExtraction, TypeNumericConversion:
		return Type(s), nil
	case "extract_normalize":
		return TypeDurationExtraction, nil
	}
	return "", fmt.Errorf("unknown rule type %q", s)
}
