package app

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperifyio/policyregex/internal/company"
	"github.com/hyperifyio/policyregex/internal/config"
)

// Layout resolves the on-disk locations of a company's documents,
// configuration resources and outputs.
type Layout struct {
	DataDir   string
	ConfigDir string
}

// LayoutFor returns the Layout of cfg.
func LayoutFor(cfg Config) Layout {
	return Layout{DataDir: cfg.DataDir, ConfigDir: cfg.ConfigDir}
}

// DocumentsDir is data/00_raw_pdfs/<company>.
func (l Layout) DocumentsDir(c string) string {
	return filepath.Join(l.DataDir, "00_raw_pdfs", c)
}

// FieldSpecsBase is config/extraction_patterns/<company> without extension.
func (l Layout) FieldSpecsBase(c string) string {
	return filepath.Join(l.ConfigDir, "extraction_patterns", c)
}

// MappingRulesBase is config/mapping_rules/<company>_map without extension.
func (l Layout) MappingRulesBase(c string) string {
	return filepath.Join(l.ConfigDir, "mapping_rules", c+"_map")
}

// RawOutput is data/02_output/<company>.json.
func (l Layout) RawOutput(c string) string {
	return filepath.Join(l.DataDir, "02_output", c+".json")
}

// MappedOutput is data/03_mapped/<company>.json.
func (l Layout) MappedOutput(c string) string {
	return filepath.Join(l.DataDir, "03_mapped", c+".json")
}

// ReportsDir is data/04_reports.
func (l Layout) ReportsDir() string {
	return filepath.Join(l.DataDir, "04_reports")
}

// DBPath is data/results.db.
func (l Layout) DBPath() string {
	return filepath.Join(l.DataDir, "results.db")
}

// FieldSpecs returns the existing extraction resource of c.
func (l Layout) FieldSpecs(c string) (string, bool) {
	return config.Find(l.FieldSpecsBase(c))
}

// MappingRules returns the existing mapping resource of c.
func (l Layout) MappingRules(c string) (string, bool) {
	return config.Find(l.MappingRulesBase(c))
}

// Companies lists the document directories under data/00_raw_pdfs whose
// names end in the company suffix, sorted.
func (l Layout) Companies() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.DataDir, "00_raw_pdfs"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), company.DirSuffix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// MappedCompanies lists companies that have a mapping resource, sorted.
func (l Layout) MappedCompanies() ([]string, error) {
	dir := filepath.Join(l.ConfigDir, "mapping_rules")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		c, ok := strings.CutSuffix(stem, "_map")
		if !ok || c == "" || seen[c] {
			continue
		}
		if _, found := l.MappingRules(c); !found {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}
