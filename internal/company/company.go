// Package company identifies the issuing insurer of a policy document by
// counting issuer phrases in its text.
package company

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/policyregex/internal/textnorm"
)

//go:embed phrases.yaml
var defaultPhrases []byte

// DirSuffix marks a company's document directory ("ak_E").
const DirSuffix = "_E"

// Issuer is one company key and the phrases that identify it.
type Issuer struct {
	Company string   `yaml:"company"`
	Phrases []string `yaml:"phrases"`
}

// Table is an ordered issuer list; on equal counts the earlier issuer wins.
type Table []Issuer

// DefaultTable returns the built-in issuer table.
func DefaultTable() Table {
	t, err := ParseTable(defaultPhrases)
	if err != nil {
		panic(fmt.Sprintf("company: built-in phrase table: %v", err))
	}
	return t
}

// ParseTable decodes a YAML issuer list.
func ParseTable(b []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse phrase table: %w", err)
	}
	for i, is := range t {
		if strings.TrimSpace(is.Company) == "" || len(is.Phrases) == 0 {
			return nil, fmt.Errorf("phrase table entry %d: company and phrases are required", i)
		}
	}
	return t, nil
}

// LoadTable reads a YAML issuer list from path.
func LoadTable(path string) (Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTable(b)
}

// Result is the outcome of Detect.
type Result struct {
	Company string
	Count   int
	Counts  map[string]int
}

// Detect folds text and returns the issuer with the highest total phrase
// count. ok is false when no phrase occurs.
func (t Table) Detect(text string) (Result, bool) {
	folded := textnorm.Fold(text)
	res := Result{Counts: make(map[string]int, len(t))}
	for _, is := range t {
		n := 0
		for _, p := range is.Phrases {
			if fp := textnorm.Fold(p); fp != "" {
				n += strings.Count(folded, fp)
			}
		}
		res.Counts[is.Company] = n
		if n > res.Count {
			res.Company, res.Count = is.Company, n
		}
	}
	return res, res.Count > 0
}

// FromDir returns the company key of a document directory name
// ("ak_E" -> "ak").
func FromDir(name string) string {
	return strings.TrimSuffix(name, DirSuffix)
}
