package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/policyregex/internal/config"
	"github.com/hyperifyio/policyregex/internal/numfmt"
	"github.com/hyperifyio/policyregex/internal/record"
)

// DefaultVersion is reported when a rule set carries no version.
const DefaultVersion = "1.0"

// RuleSet is a company's mapping configuration.
type RuleSet struct {
	Company string
	Version string
	Rules   map[string]Rule
}

// Lookup returns the rule for field.
func (s *RuleSet) Lookup(field string) (Rule, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.Rules[field]
	return r, ok
}

// Fields returns the configured field names in order.
func (s *RuleSet) Fields() []string {
	out := make([]string, 0, len(s.Rules))
	for f := range s.Rules {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

type rawRuleSet struct {
	Company       string             `json:"company"`
	Version       json.RawMessage    `json:"version"`
	FieldMappings map[string]rawRule `json:"field_mappings"`
}

type rawRule struct {
	Type            string          `json:"type"`
	Output          json.RawMessage `json:"output"`
	Default         json.RawMessage `json:"default"`
	Mappings        []rawEntry      `json:"mappings"`
	ExtractPatterns []rawPattern    `json:"extract_patterns"`
	Sentinels       []rawSentinel   `json:"sentinels"`
	NumberFormat    string          `json:"number_format"`
	TurkishFormat   *bool           `json:"turkish_format"`
	Description     string          `json:"description"`
}

type rawEntry struct {
	InputPattern  json.RawMessage `json:"input_pattern"`
	Pattern       json.RawMessage `json:"pattern"`
	InputExact    json.RawMessage `json:"input_exact"`
	Input         json.RawMessage `json:"input"`
	InputContains string          `json:"input_contains"`
	Output        json.RawMessage `json:"output"`
	Multiplier    *float64        `json:"multiplier"`
	Transform     string          `json:"transform"`
	Group         *int            `json:"group"`
}

type rawPattern struct {
	Pattern string `json:"pattern"`
	Group   *int   `json:"group"`
}

type rawSentinel struct {
	Phrase string          `json:"phrase"`
	Output json.RawMessage `json:"output"`
}

// LoadRuleSet reads, validates and compiles a mapping resource (JSON or
// YAML). Every problem is reported as a ConfigError.
func LoadRuleSet(path string) (*RuleSet, error) {
	js, err := config.Load(path, config.MappingRules)
	if err != nil {
		return nil, err
	}
	return decodeRuleSet(path, js)
}

// ParseRuleSet is LoadRuleSet for in-memory content.
func ParseRuleSet(resource string, b []byte) (*RuleSet, error) {
	js, err := config.Parse(resource, config.MappingRules, b)
	if err != nil {
		return nil, err
	}
	return decodeRuleSet(resource, js)
}

func decodeRuleSet(resource string, js []byte) (*RuleSet, error) {
	var raw rawRuleSet
	if err := json.Unmarshal(js, &raw); err != nil {
		return nil, &config.ConfigError{Resource: resource, Reason: "decode mapping rules", Err: err}
	}
	set := &RuleSet{Company: raw.Company, Version: DefaultVersion, Rules: make(map[string]Rule, len(raw.FieldMappings))}
	if len(raw.Version) > 0 && !bytes.Equal(raw.Version, []byte("null")) {
		var s string
		if json.Unmarshal(raw.Version, &s) == nil {
			set.Version = s
		} else {
			set.Version = string(raw.Version)
		}
	}
	for field, rr := range raw.FieldMappings {
		r, err := buildRule(resource, field, rr)
		if err != nil {
			return nil, err
		}
		set.Rules[field] = r
	}
	return set, nil
}

func present(m json.RawMessage) bool { return len(m) > 0 }

func isNull(m json.RawMessage) bool { return bytes.Equal(bytes.TrimSpace(m), []byte("null")) }

// scalar decodes a configured output or default: null, string or number.
func scalar(m json.RawMessage) (record.Value, error) {
	if isNull(m) {
		return record.Null(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(m))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return record.Value{}, err
	}
	switch t := v.(type) {
	case string:
		return record.String(t), nil
	case json.Number:
		return record.FromNumber(t)
	}
	return record.Value{}, fmt.Errorf("expected string, number or null")
}

func buildRule(resource, field string, rr rawRule) (Rule, error) {
	typ, err := typeOf(rr.Type)
	if err != nil {
		return nil, &config.ConfigError{Resource: resource, Field: field, Reason: "invalid type", Err: err}
	}
	fail := func(format string, args ...any) error {
		return config.Errorf(resource, field, format, args...)
	}
	def := Default{}
	if present(rr.Default) {
		v, err := scalar(rr.Default)
		if err != nil {
			return nil, fail("default: %v", err)
		}
		def = Default{Value: v, Set: true}
	}

	switch typ {
	case TypeFixedValue:
		if !present(rr.Output) {
			return nil, fail("fixed_value requires output")
		}
		v, err := scalar(rr.Output)
		if err != nil {
			return nil, fail("output: %v", err)
		}
		return FixedValue{Output: v}, nil

	case TypePatternToValue:
		if rr.Mappings == nil {
			return nil, fail("pattern_to_value requires mappings")
		}
		entries, err := buildEntries(rr.Mappings, func(i int, e rawEntry) error {
			if !present(e.Output) {
				return fmt.Errorf("mappings[%d]: output is required", i)
			}
			return nil
		})
		if err != nil {
			return nil, &config.ConfigError{Resource: resource, Field: field, Reason: "invalid mappings", Err: err}
		}
		return PatternToValue{Entries: entries, Default: def}, nil

	case TypeAmountNormalization:
		entries, err := buildEntries(rr.Mappings, func(i int, e rawEntry) error {
			if !present(e.Output) && e.Transform == "" {
				return fmt.Errorf("mappings[%d]: output or transform is required", i)
			}
			return nil
		})
		if err != nil {
			return nil, &config.ConfigError{Resource: resource, Field: field, Reason: "invalid mappings", Err: err}
		}
		sentinels := make([]Sentinel, 0, len(rr.Sentinels))
		for i, s := range rr.Sentinels {
			if strings.TrimSpace(s.Phrase) == "" || !present(s.Output) {
				return nil, fail("sentinels[%d]: phrase and output are required", i)
			}
			v, err := scalar(s.Output)
			if err != nil {
				return nil, fail("sentinels[%d].output: %v", i, err)
			}
			sentinels = append(sentinels, Sentinel{Phrase: s.Phrase, Output: v})
		}
		return AmountNormalization{Sentinels: sentinels, Entries: entries, Default: def}, nil

	case TypeDurationExtraction:
		if len(rr.ExtractPatterns) == 0 {
			return nil, fail("%s requires extract_patterns", rr.Type)
		}
		patterns := make([]DurationPattern, 0, len(rr.ExtractPatterns))
		for i, p := range rr.ExtractPatterns {
			g := -1
			if p.Group != nil {
				g = *p.Group
			}
			dp, err := NewDurationPattern(p.Pattern, g)
			if err != nil {
				return nil, &config.ConfigError{Resource: resource, Field: field, Reason: "invalid extract_patterns[" + strconv.Itoa(i) + "]", Err: err}
			}
			patterns = append(patterns, dp)
		}
		mappings, err := buildEntries(rr.Mappings, func(i int, e rawEntry) error {
			if !present(e.Output) {
				return fmt.Errorf("mappings[%d]: output is required", i)
			}
			return nil
		})
		if err != nil {
			return nil, &config.ConfigError{Resource: resource, Field: field, Reason: "invalid mappings", Err: err}
		}
		return DurationExtraction{Patterns: patterns, Mappings: mappings, Default: def}, nil

	case TypeNumericConversion:
		format := numfmt.Turkish
		switch {
		case rr.NumberFormat != "":
			f, err := numfmt.ParseFormat(rr.NumberFormat)
			if err != nil {
				return nil, &config.ConfigError{Resource: resource, Field: field, Reason: "invalid number_format", Err: err}
			}
			format = f
		case rr.TurkishFormat != nil && !*rr.TurkishFormat:
			format = numfmt.English
		}
		entries, err := buildEntries(literalPatterns(rr.Mappings), func(i int, e rawEntry) error {
			if !present(e.Output) && e.Multiplier == nil {
				return fmt.Errorf("mappings[%d]: output or multiplier is required", i)
			}
			if present(e.Output) && e.Multiplier == nil {
				v, err := scalar(e.Output)
				if err != nil {
					return fmt.Errorf("mappings[%d].output: %w", i, err)
				}
				if _, ok := integerOf(v); !ok {
					return fmt.Errorf("mappings[%d]: output %s is not a number", i, v.GoString())
				}
			}
			return nil
		})
		if err != nil {
			return nil, &config.ConfigError{Resource: resource, Field: field, Reason: "invalid mappings", Err: err}
		}
		if def.Set && !def.Value.IsNull() {
			n, ok := integerOf(def.Value)
			if !ok {
				return nil, fail("default %s is not a number", def.Value.GoString())
			}
			def.Value = record.Int(n)
		}
		return NumericConversion{Entries: entries, Format: format, Default: def}, nil
	}
	return nil, fail("unhandled type %s", typ)
}

// buildEntries compiles mapping entries in order; check adds per-type
// requirements.
func buildEntries(raw []rawEntry, check func(int, rawEntry) error) ([]Entry, error) {
	out := make([]Entry, 0, len(raw))
	for i, re := range raw {
		if err := check(i, re); err != nil {
			return nil, err
		}
		e, err := buildEntry(re)
		if err != nil {
			return nil, fmt.Errorf("mappings[%d]: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// literalPatterns turns input_pattern into input_exact. Numeric entries name
// the literal raw value they replace, so "25" must not match "250".
func literalPatterns(raw []rawEntry) []rawEntry {
	out := make([]rawEntry, len(raw))
	for i, re := range raw {
		src := re.InputPattern
		if !present(src) {
			src = re.Pattern
		}
		if present(src) && !present(re.InputExact) && !present(re.Input) {
			re.InputExact, re.InputPattern, re.Pattern = src, nil, nil
		}
		out[i] = re
	}
	return out
}

func buildEntry(re rawEntry) (Entry, error) {
	e := Entry{Group: 1}
	if re.Group != nil {
		e.Group = *re.Group
	}
	matchers := 0
	patternSrc, exactSrc := re.InputPattern, re.InputExact
	if !present(patternSrc) {
		patternSrc = re.Pattern
	}
	if !present(exactSrc) {
		exactSrc = re.Input
	}
	if present(patternSrc) {
		matchers++
		var s string
		if isNull(patternSrc) || (json.Unmarshal(patternSrc, &s) == nil && s == "null") {
			e.Kind = MatchNull
		} else {
			rx, err := compileEntryPattern(s)
			if err != nil {
				return Entry{}, err
			}
			e.Kind, e.Pattern = MatchPattern, rx
		}
	}
	if present(exactSrc) {
		matchers++
		var s string
		if isNull(exactSrc) || (json.Unmarshal(exactSrc, &s) == nil && s == "null") {
			e.Kind = MatchNull
		} else {
			e.Kind, e.Literal = MatchExact, s
		}
	}
	if re.InputContains != "" {
		matchers++
		e.Kind, e.Literal = MatchContains, re.InputContains
	}
	switch {
	case matchers == 0:
		return Entry{}, fmt.Errorf("one of input_pattern, input_exact or input_contains is required")
	case matchers > 1:
		return Entry{}, fmt.Errorf("input_pattern, input_exact and input_contains are mutually exclusive")
	}
	if present(re.Output) {
		v, err := scalar(re.Output)
		if err != nil {
			return Entry{}, fmt.Errorf("output: %w", err)
		}
		e.Output, e.HasOutput = v, true
	}
	if re.Multiplier != nil {
		if *re.Multiplier == 0 {
			return Entry{}, fmt.Errorf("multiplier must not be zero")
		}
		e.Multiplier = *re.Multiplier
	}
	switch re.Transform {
	case "":
	case "turkish", "format_turkish_amount":
		e.Transform = TransformTurkish
	case "simple", "format_simple_amount":
		e.Transform = TransformSimple
	default:
		return Entry{}, fmt.Errorf("unknown transform %q", re.Transform)
	}
	return e, nil
}
