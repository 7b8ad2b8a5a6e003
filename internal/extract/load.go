package extract

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/hyperifyio/policyregex/internal/config"
)

// Specs is a company's field configuration, ordered by field name.
type Specs []*FieldSpec

// Names returns the field names in order.
func (s Specs) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the spec for name.
func (s Specs) Lookup(name string) (*FieldSpec, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].Name >= name })
	if i < len(s) && s[i].Name == name {
		return s[i], true
	}
	return nil, false
}

type rawSpec struct {
	Pattern     json.RawMessage `json:"pattern"`
	Patterns    json.RawMessage `json:"patterns"`
	Group       json.RawMessage `json:"group"`
	Mode        string          `json:"mode"`
	Description string          `json:"description"`
}

type rawPattern struct {
	Pattern string `json:"pattern"`
	Group   *int   `json:"group"`
}

func present(m json.RawMessage) bool {
	return len(m) > 0 && !bytes.Equal(m, []byte("null"))
}

// LoadFieldSpecs reads, validates and compiles a field configuration
// resource (JSON or YAML). Every problem is reported as a ConfigError.
func LoadFieldSpecs(path string) (Specs, error) {
	js, err := config.Load(path, config.FieldSpecs)
	if err != nil {
		return nil, err
	}
	return decodeSpecs(path, js)
}

// ParseFieldSpecs is LoadFieldSpecs for in-memory content; resource names
// the content in errors and selects the format by extension.
func ParseFieldSpecs(resource string, b []byte) (Specs, error) {
	js, err := config.Parse(resource, config.FieldSpecs, b)
	if err != nil {
		return nil, err
	}
	return decodeSpecs(resource, js)
}

func decodeSpecs(resource string, js []byte) (Specs, error) {
	var raw map[string]rawSpec
	if err := json.Unmarshal(js, &raw); err != nil {
		return nil, &config.ConfigError{Resource: resource, Reason: "decode field specs", Err: err}
	}
	specs := make(Specs, 0, len(raw))
	for name, r := range raw {
		f, err := buildSpec(resource, name, r)
		if err != nil {
			return nil, err
		}
		specs = append(specs, f)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

func buildSpec(resource, name string, r rawSpec) (*FieldSpec, error) {
	hasPattern, hasPatterns := present(r.Pattern), present(r.Patterns)
	switch {
	case hasPattern && hasPatterns:
		return nil, config.Errorf(resource, name, "pattern and patterns are mutually exclusive")
	case !hasPattern && !hasPatterns:
		return nil, config.Errorf(resource, name, "one of pattern or patterns is required")
	}

	group, groupAll := 1, false
	if present(r.Group) {
		if err := json.Unmarshal(r.Group, &group); err != nil {
			var s string
			if json.Unmarshal(r.Group, &s) != nil || s != "all" {
				return nil, config.Errorf(resource, name, "group must be an integer or \"all\"")
			}
			group, groupAll = 0, true
		}
	}

	f := &FieldSpec{Name: name, Description: r.Description}
	if hasPattern {
		if groupAll && r.Mode != "" && r.Mode != "all" {
			return nil, config.Errorf(resource, name, "group \"all\" conflicts with mode %s", r.Mode)
		}
		var src string
		if err := json.Unmarshal(r.Pattern, &src); err != nil {
			return nil, config.Errorf(resource, name, "pattern must be a string")
		}
		p, err := CompilePattern(src, group)
		if err != nil {
			return nil, &config.ConfigError{Resource: resource, Field: name, Reason: "invalid pattern", Err: err}
		}
		f.Patterns = []Pattern{p}
		f.Mode = ModeSingle
		if groupAll {
			f.Mode = ModeAll
		}
	} else {
		if groupAll {
			return nil, config.Errorf(resource, name, "group \"all\" is only valid with pattern")
		}
		var items []json.RawMessage
		if err := json.Unmarshal(r.Patterns, &items); err != nil {
			return nil, config.Errorf(resource, name, "patterns must be a list")
		}
		for i, item := range items {
			rp := rawPattern{}
			if err := json.Unmarshal(item, &rp.Pattern); err != nil {
				if err := json.Unmarshal(item, &rp); err != nil {
					return nil, config.Errorf(resource, name, "patterns[%d] must be a string or {pattern, group}", i)
				}
			}
			g := group
			if rp.Group != nil {
				g = *rp.Group
			}
			p, err := CompilePattern(rp.Pattern, g)
			if err != nil {
				return nil, &config.ConfigError{Resource: resource, Field: name, Reason: "invalid patterns[" + strconv.Itoa(i) + "]", Err: err}
			}
			f.Patterns = append(f.Patterns, p)
		}
		f.Mode = ModeFirst
	}

	if r.Mode != "" {
		m, err := ParseMode(r.Mode)
		if err != nil {
			return nil, &config.ConfigError{Resource: resource, Field: name, Reason: "invalid mode", Err: err}
		}
		f.Mode = m
	}
	if err := f.Validate(); err != nil {
		return nil, &config.ConfigError{Resource: resource, Field: name, Reason: "invalid field spec", Err: err}
	}
	return f, nil
}
