// Package config reads the per-company configuration resources (extraction
// patterns and mapping rules) and reports every configuration-time failure as
// a ConfigError before any document is processed.
package config

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	yaml "gopkg.in/yaml.v3"
)

// ErrConfig is matched by errors.Is for every ConfigError.
var ErrConfig = errors.New("configuration error")

// ConfigError describes an invalid configuration resource. Resource is the
// file (or logical name) being loaded, Field the field name inside it when
// the problem is field-specific.
type ConfigError struct {
	Resource string
	Field    string
	Reason   string
	Err      error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Resource != "" {
		b.WriteString(" ")
		b.WriteString(e.Resource)
	}
	if e.Field != "" {
		b.WriteString(": field ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Errorf builds a ConfigError for a field in resource.
func Errorf(resource, field, format string, args ...any) *ConfigError {
	return &ConfigError{Resource: resource, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Schema names the embedded JSON Schema a resource is validated against.
type Schema string

const (
	FieldSpecs   Schema = "field_specs.schema.json"
	MappingRules Schema = "mapping_rules.schema.json"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce  sync.Once
	schemaErr   error
	schemaCache map[Schema]*jsonschema.Schema
)

func compiledSchema(name Schema) (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		schemaCache = map[Schema]*jsonschema.Schema{}
		for _, n := range []Schema{FieldSpecs, MappingRules} {
			b, err := schemaFS.ReadFile("schemas/" + string(n))
			if err != nil {
				schemaErr = fmt.Errorf("read schema %s: %w", n, err)
				return
			}
			if err := compiler.AddResource(string(n), bytes.NewReader(b)); err != nil {
				schemaErr = fmt.Errorf("add schema %s: %w", n, err)
				return
			}
		}
		for _, n := range []Schema{FieldSpecs, MappingRules} {
			s, err := compiler.Compile(string(n))
			if err != nil {
				schemaErr = fmt.Errorf("compile schema %s: %w", n, err)
				return
			}
			schemaCache[n] = s
		}
	})
	if schemaErr != nil {
		return nil, schemaErr
	}
	return schemaCache[name], nil
}

// Validate checks a JSON document against the named schema.
func Validate(resource string, name Schema, data []byte) error {
	s, err := compiledSchema(name)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &ConfigError{Resource: resource, Reason: "invalid JSON", Err: err}
	}
	if err := s.Validate(v); err != nil {
		return &ConfigError{Resource: resource, Reason: "does not match schema", Err: err}
	}
	return nil
}

// ToJSON converts a YAML or JSON resource into JSON bytes. The format is
// chosen by extension; unknown extensions try JSON first, then YAML.
func ToJSON(resource string, b []byte) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(resource)); ext {
	case ".json":
		if !json.Valid(b) {
			var probe any
			err := json.Unmarshal(b, &probe)
			return nil, &ConfigError{Resource: resource, Reason: "parse json", Err: err}
		}
		return b, nil
	case ".yaml", ".yml":
		return yamlToJSON(resource, b)
	default:
		if json.Valid(b) {
			return b, nil
		}
		return yamlToJSON(resource, b)
	}
}

func yamlToJSON(resource string, b []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, &ConfigError{Resource: resource, Reason: "parse yaml", Err: err}
	}
	out, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, &ConfigError{Resource: resource, Reason: "convert yaml", Err: err}
	}
	return out, nil
}

// normalizeYAML turns map[any]any nodes (non-string keys) into
// map[string]any so the value can be encoded as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	}
	return v
}

// Load reads a resource from disk, converts it to JSON and validates it
// against the schema. The returned bytes are ready for typed decoding.
func Load(path string, name Schema) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Resource: path, Reason: "read", Err: err}
	}
	return Parse(path, name, b)
}

// Parse is Load for in-memory content; resource is used for messages and to
// pick the format.
func Parse(resource string, name Schema, b []byte) ([]byte, error) {
	js, err := ToJSON(resource, b)
	if err != nil {
		return nil, err
	}
	if err := Validate(resource, name, js); err != nil {
		return nil, err
	}
	return js, nil
}

// Find returns the first existing path among base+".json", base+".yaml" and
// base+".yml".
func Find(base string) (string, bool) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		p := base + ext
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}
