// Package bootstrap derives pattern_to_value mapping rules from observed
// (raw value, desired output, count) samples, resolving raw values observed
// with more than one output so that the emitted rules are one-to-one.
package bootstrap

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperifyio/policyregex/internal/textnorm"
)

// Sample is one observed mapping. A nil Raw is the null raw value.
type Sample struct {
	Field  string
	Raw    *string
	Output string
	Count  int
}

func nullToken(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "None", "none", "null", "NULL":
		return true
	}
	return false
}

// ReadSamples parses CSV with columns field, raw_value, output, count. A
// header row is skipped when its first cell is "field". An empty raw_value,
// None or null denote the null raw value.
func ReadSamples(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true
	var out []Sample
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("samples: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "field") {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("samples line %d: invalid count %q", line, rec[3])
		}
		s := Sample{Field: strings.TrimSpace(rec[0]), Output: rec[2], Count: count}
		if s.Field == "" {
			return nil, fmt.Errorf("samples line %d: empty field", line)
		}
		if !nullToken(rec[1]) {
			raw := textnorm.CollapseSpace(rec[1])
			s.Raw = &raw
		}
		out = append(out, s)
	}
	return out, nil
}

// Candidate is one output observed for a raw value with its total count.
type Candidate struct {
	Output string
	Count  int
}

// Conflict reports a raw value seen with several outputs.
type Conflict struct {
	Field   string
	Raw     *string
	Kept    Candidate
	Dropped []Candidate
	// Tie is set when a dropped candidate had the kept count; the first
	// seen candidate was kept.
	Tie bool
}

// Entry is one resolved raw -> output mapping.
type Entry struct {
	Raw    *string
	Output string
	Count  int
}

type group struct {
	raw        *string
	candidates []Candidate
}

func rawKey(r *string) string {
	if r == nil {
		return "\x00null"
	}
	return *r
}

// Resolve keeps, for every (field, raw value), the candidate with the
// strictly highest count. Counts of identical (raw, output) samples are
// summed first. Entries per field are ordered by descending count then raw
// value, null first.
func Resolve(samples []Sample) (map[string][]Entry, []Conflict) {
	groups := map[string]map[string]*group{}
	order := map[string][]string{}
	for _, s := range samples {
		byRaw, ok := groups[s.Field]
		if !ok {
			byRaw = map[string]*group{}
			groups[s.Field] = byRaw
		}
		k := rawKey(s.Raw)
		g, ok := byRaw[k]
		if !ok {
			g = &group{raw: s.Raw}
			byRaw[k] = g
			order[s.Field] = append(order[s.Field], k)
		}
		merged := false
		for i := range g.candidates {
			if g.candidates[i].Output == s.Output {
				g.candidates[i].Count += s.Count
				merged = true
				break
			}
		}
		if !merged {
			g.candidates = append(g.candidates, Candidate{Output: s.Output, Count: s.Count})
		}
	}

	fields := make([]string, 0, len(groups))
	for f := range groups {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make(map[string][]Entry, len(groups))
	var conflicts []Conflict
	for _, f := range fields {
		var entries []Entry
		for _, k := range order[f] {
			g := groups[f][k]
			best := 0
			for i, c := range g.candidates {
				if c.Count > g.candidates[best].Count {
					best = i
				}
			}
			kept := g.candidates[best]
			if len(g.candidates) > 1 {
				c := Conflict{Field: f, Raw: g.raw, Kept: kept}
				for i, cand := range g.candidates {
					if i == best {
						continue
					}
					c.Dropped = append(c.Dropped, cand)
					if cand.Count == kept.Count {
						c.Tie = true
					}
				}
				conflicts = append(conflicts, c)
			}
			entries = append(entries, Entry{Raw: g.raw, Output: kept.Output, Count: kept.Count})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Count != entries[j].Count {
				return entries[i].Count > entries[j].Count
			}
			return rawKey(entries[i].Raw) < rawKey(entries[j].Raw)
		})
		out[f] = entries
	}
	return out, conflicts
}

// RuleFile is the mapping resource written by Build.
type RuleFile struct {
	Company       string                `json:"company,omitempty"`
	Version       string                `json:"version"`
	FieldMappings map[string]RuleOutput `json:"field_mappings"`
}

// RuleOutput is one emitted pattern_to_value rule.
type RuleOutput struct {
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Mappings    []EntryOutput `json:"mappings"`
}

// EntryOutput is one emitted mapping entry; a null InputExact is the
// null-sentinel.
type EntryOutput struct {
	InputExact *string `json:"input_exact"`
	Output     string  `json:"output"`
}

// Build resolves samples into a mapping resource for company.
func Build(company string, samples []Sample) (RuleFile, []Conflict) {
	resolved, conflicts := Resolve(samples)
	rf := RuleFile{Company: company, Version: "1.0", FieldMappings: map[string]RuleOutput{}}
	for field, entries := range resolved {
		r := RuleOutput{Type: "pattern_to_value", Description: "generated from samples"}
		for _, e := range entries {
			r.Mappings = append(r.Mappings, EntryOutput{InputExact: e.Raw, Output: e.Output})
		}
		rf.FieldMappings[field] = r
	}
	return rf, conflicts
}

// Marshal renders rf as indented JSON without HTML escaping.
func Marshal(rf RuleFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores rf at path, creating parent directories.
func Write(path string, rf RuleFile) error {
	b, err := Marshal(rf)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
