package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/policyregex/internal/cache"
	"github.com/hyperifyio/policyregex/internal/extract"
	"github.com/hyperifyio/policyregex/internal/mapping"
	"github.com/hyperifyio/policyregex/internal/record"
	"github.com/hyperifyio/policyregex/internal/stats"
	"github.com/hyperifyio/policyregex/internal/store"
	"github.com/hyperifyio/policyregex/internal/textsource"
)

var (
	// ErrNoDocuments is returned when a company directory yields no readable
	// document.
	ErrNoDocuments = errors.New("no readable documents")
	// ErrNoFieldSpecs is returned when a company has no extraction resource.
	ErrNoFieldSpecs = errors.New("no extraction configuration")
	// ErrNoMappingConfig is returned when normalization is requested without
	// a mapping resource.
	ErrNoMappingConfig = errors.New("no mapping configuration")
)

type App struct {
	cfg    Config
	layout Layout
	loader *textsource.Loader
	store  store.ResultRepository
	now    func() time.Time
}

// New validates cfg, applies cache maintenance and opens the result store
// when enabled.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, layout: LayoutFor(cfg), now: time.Now}
	a.loader = &textsource.Loader{Workers: cfg.Workers}
	if cfg.CacheDir != "" && !cfg.DisableCache {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err == nil && n > 0 {
				log.Debug().Int("count", n).Msg("purged stale cache entries")
			}
		}
		if cfg.CacheMaxCount > 0 {
			if _, err := cache.EnforceLimits(cfg.CacheDir, 0, cfg.CacheMaxCount); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Int("max_count", cfg.CacheMaxCount).Msg("cache limit enforcement failed")
			}
		}
		a.loader.Cache = &cache.TextCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	if cfg.UseStore {
		path := cfg.DBPath
		if path == "" {
			path = a.layout.DBPath()
		}
		db, err := store.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open result store: %w", err)
		}
		a.store = db
	}
	return a, nil
}

func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Layout returns the resolved data and configuration layout.
func (a *App) Layout() Layout { return a.layout }

// Companies lists the companies found under the documents directory.
func (a *App) Companies() ([]string, error) { return a.layout.Companies() }

// Texts loads the plain text of every readable document of company.
func (a *App) Texts(ctx context.Context, company string) (map[string]string, error) {
	docs, err := a.loader.LoadDir(ctx, a.layout.DocumentsDir(company))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoDocuments, a.layout.DocumentsDir(company))
		}
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, a.layout.DocumentsDir(company))
	}
	return docs, nil
}

// FieldSpecs loads the extraction resource of company.
func (a *App) FieldSpecs(company string) (extract.Specs, string, error) {
	path, ok := a.layout.FieldSpecs(company)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s.{json,yaml}", ErrNoFieldSpecs, a.layout.FieldSpecsBase(company))
	}
	specs, err := extract.LoadFieldSpecs(path)
	return specs, path, err
}

// ExtractOptions tune Extract. Empty fields use the layout defaults.
type ExtractOptions struct {
	Output string
}

// ExtractResult describes one extraction run.
type ExtractResult struct {
	Company string
	RunID   string
	Output  string
	Results record.Set
}

// Extract runs the company's field specs over its documents and writes the
// raw results file with its manifest sidecar. Configuration is loaded and
// validated before any document is read.
func (a *App) Extract(ctx context.Context, company string, opts ExtractOptions) (ExtractResult, error) {
	start := a.now()
	specs, specPath, err := a.FieldSpecs(company)
	if err != nil {
		return ExtractResult{}, err
	}
	texts, err := a.Texts(ctx, company)
	if err != nil {
		return ExtractResult{}, err
	}
	eng := &extract.Engine{Specs: specs, Workers: a.cfg.Workers}
	set, err := eng.Run(ctx, texts)
	if err != nil {
		return ExtractResult{}, err
	}
	res := ExtractResult{Company: company, RunID: uuid.NewString(), Output: opts.Output, Results: set}
	if res.Output == "" {
		res.Output = a.layout.RawOutput(company)
	}
	if err := record.WriteFile(res.Output, set, nil); err != nil {
		return ExtractResult{}, fmt.Errorf("write raw results: %w", err)
	}
	meta := manifestMeta{
		RunID:         res.RunID,
		Company:       company,
		FieldSpecs:    specPath,
		FieldCount:    len(specs),
		DocumentCount: len(set),
		Version:       BuildVersion,
		GeneratedAt:   a.now().UTC(),
	}
	if err := writeManifest(res.Output, meta, buildManifestEntries(set.Documents(), texts)); err != nil {
		log.Warn().Err(err).Str("company", company).Msg("manifest write failed")
	}
	if a.store != nil {
		if err := a.store.Save(ctx, company, store.StageRaw, res.RunID, set); err != nil {
			return ExtractResult{}, fmt.Errorf("store raw results: %w", err)
		}
	}
	log.Info().Str("company", company).Int("docs", len(set)).Int("fields", len(specs)).
		Dur("elapsed", a.now().Sub(start)).Str("output", res.Output).Msg("extraction complete")
	return res, nil
}

// MappingMetadata is written under record.MetadataKey in normalized output.
type MappingMetadata struct {
	Company         string        `json:"company"`
	ConfigVersion   string        `json:"config_version"`
	RunID           string        `json:"run_id"`
	Timestamp       string        `json:"timestamp"`
	ProcessingStats mapping.Stats `json:"processing_stats"`
}

// NormalizeOptions override the layout's input, output and mapping paths.
type NormalizeOptions struct {
	Input   string
	Output  string
	Mapping string
}

// NormalizeResult describes one normalization run.
type NormalizeResult struct {
	Company  string
	Output   string
	Metadata MappingMetadata
	Results  record.Set
}

// MappingRules loads the mapping resource of company, or the one at path
// when it is not empty.
func (a *App) MappingRules(company, path string) (*mapping.RuleSet, string, error) {
	if path == "" {
		p, ok := a.layout.MappingRules(company)
		if !ok {
			return nil, "", fmt.Errorf("%w: %s.{json,yaml}", ErrNoMappingConfig, a.layout.MappingRulesBase(company))
		}
		path = p
	}
	rules, err := mapping.LoadRuleSet(path)
	return rules, path, err
}

// Normalize applies the company's mapping rules to its raw results and
// writes the normalized results file.
func (a *App) Normalize(ctx context.Context, company string, opts NormalizeOptions) (NormalizeResult, error) {
	rules, _, err := a.MappingRules(company, opts.Mapping)
	if err != nil {
		return NormalizeResult{}, err
	}
	return a.normalize(ctx, company, rules, opts)
}

func (a *App) normalize(ctx context.Context, company string, rules *mapping.RuleSet, opts NormalizeOptions) (NormalizeResult, error) {
	start := a.now()
	in := opts.Input
	if in == "" {
		in = a.layout.RawOutput(company)
	}
	raw, _, err := record.ReadFile(in)
	if err != nil {
		return NormalizeResult{}, fmt.Errorf("read raw results: %w", err)
	}
	eng := &mapping.Engine{Rules: rules, Workers: a.cfg.Workers}
	set, st, err := eng.Run(ctx, raw)
	if err != nil {
		return NormalizeResult{}, err
	}
	name := rules.Company
	if name == "" {
		name = company
	}
	res := NormalizeResult{
		Company: company,
		Output:  opts.Output,
		Results: set,
		Metadata: MappingMetadata{
			Company:         name,
			ConfigVersion:   rules.Version,
			RunID:           uuid.NewString(),
			Timestamp:       a.now().UTC().Format(time.RFC3339),
			ProcessingStats: st,
		},
	}
	if res.Output == "" {
		res.Output = a.layout.MappedOutput(company)
	}
	if err := record.WriteFile(res.Output, set, res.Metadata); err != nil {
		return NormalizeResult{}, fmt.Errorf("write normalized results: %w", err)
	}
	if a.store != nil {
		if err := a.store.Save(ctx, company, store.StageNormalized, res.Metadata.RunID, set); err != nil {
			return NormalizeResult{}, fmt.Errorf("store normalized results: %w", err)
		}
	}
	log.Info().Str("company", company).Int("docs", len(set)).
		Int("mapped_fields", st.MappedFields).Int("passthrough_fields", st.PassthroughFields).
		Dur("elapsed", a.now().Sub(start)).Str("output", res.Output).Msg("normalization complete")
	return res, nil
}

// ProcessOptions tune Process.
type ProcessOptions struct {
	SkipExtraction bool
}

// ProcessResult holds the outcome of both stages; Normalized is nil when
// the company has no mapping resource.
type ProcessResult struct {
	Extracted  *ExtractResult
	Normalized *NormalizeResult
}

// Process runs extraction then normalization. Mapping rules are loaded
// first so a bad resource fails before any document is read. A missing
// mapping resource skips normalization with a warning.
func (a *App) Process(ctx context.Context, company string, opts ProcessOptions) (ProcessResult, error) {
	var pr ProcessResult
	rules, _, err := a.MappingRules(company, "")
	switch {
	case errors.Is(err, ErrNoMappingConfig):
		log.Warn().Str("company", company).Msg("no mapping configuration; skipping normalization")
		rules = nil
	case err != nil:
		return pr, err
	}
	if !opts.SkipExtraction {
		er, err := a.Extract(ctx, company, ExtractOptions{})
		if err != nil {
			return pr, err
		}
		pr.Extracted = &er
	}
	if rules == nil {
		return pr, nil
	}
	nr, err := a.normalize(ctx, company, rules, NormalizeOptions{})
	if err != nil {
		return pr, err
	}
	pr.Normalized = &nr
	return pr, nil
}

// Results returns the stored results of company for stage, read from the
// output file, or from the result store when the file is missing.
func (a *App) Results(ctx context.Context, company string, stage store.Stage) (record.Set, error) {
	path := a.layout.RawOutput(company)
	if stage == store.StageNormalized {
		path = a.layout.MappedOutput(company)
	}
	set, _, err := record.ReadFile(path)
	if err == nil {
		return set, nil
	}
	if errors.Is(err, os.ErrNotExist) && a.store != nil {
		stored, serr := a.store.Load(ctx, company, stage)
		if serr != nil {
			return nil, serr
		}
		if len(stored) > 0 {
			return stored, nil
		}
	}
	return nil, fmt.Errorf("read %s results of %s: %w", stage, company, err)
}

// Check computes field statistics over a company's results, restricted to
// fields when given.
func (a *App) Check(ctx context.Context, company string, stage store.Stage, fields []string) (stats.Summary, error) {
	set, err := a.Results(ctx, company, stage)
	if err != nil {
		return stats.Summary{}, err
	}
	if len(fields) == 0 {
		return stats.Summarize(set), nil
	}
	return stats.SummarizeFields(set, fields), nil
}
