package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Record maps field name to value for a single document. It is the shape of
// both a RawResult and a NormalizedResult.
type Record map[string]Value

// Set maps document identifier to that document's Record.
type Set map[string]Record

// Fields returns the record's field names in sorted order.
func (r Record) Fields() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Documents returns the set's document identifiers in sorted order.
func (s Set) Documents() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fields returns the union of field names across all documents, sorted.
func (s Set) Fields() []string {
	seen := map[string]struct{}{}
	for _, r := range s {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ByField is the field-major layout used on disk: field -> document -> value.
type ByField map[string]map[string]Value

// Transpose converts a document-major Set to the field-major layout. A field
// missing from one document's record is written as null for that document so
// every field column covers every document.
func (s Set) Transpose() ByField {
	fields := s.Fields()
	out := make(ByField, len(fields))
	for _, f := range fields {
		col := make(map[string]Value, len(s))
		for doc, r := range s {
			col[doc] = r[f]
		}
		out[f] = col
	}
	return out
}

// Set converts the field-major layout back to document-major.
func (b ByField) Set() Set {
	out := Set{}
	for field, col := range b {
		for doc, v := range col {
			r, ok := out[doc]
			if !ok {
				r = Record{}
				out[doc] = r
			}
			r[field] = v
		}
	}
	return out
}

// MetadataKey is the reserved top-level key carrying run metadata in the
// normalized output file.
const MetadataKey = "_mapping_metadata"

// Marshal encodes the set in field-major layout, keys sorted, with an
// optional metadata object under MetadataKey.
func Marshal(s Set, meta any) ([]byte, error) {
	payload := map[string]any{}
	for f, col := range s.Transpose() {
		payload[f] = col
	}
	if meta != nil {
		payload[MetadataKey] = meta
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a field-major results file. The metadata object, when
// present, is returned raw.
func Unmarshal(data []byte) (Set, json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, nil, fmt.Errorf("decode results: %w", err)
	}
	meta := top[MetadataKey]
	delete(top, MetadataKey)
	byField := make(ByField, len(top))
	for field, raw := range top {
		var col map[string]Value
		if err := json.Unmarshal(raw, &col); err != nil {
			return nil, nil, fmt.Errorf("decode field %q: %w", field, err)
		}
		byField[field] = col
	}
	return byField.Set(), meta, nil
}

// ReadFile loads a results file written by WriteFile.
func ReadFile(path string) (Set, json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Unmarshal(b)
}

// WriteFile writes the set to path, creating parent directories.
func WriteFile(path string, s Set, meta any) error {
	b, err := Marshal(s, meta)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}
