package mapping

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/policyregex/internal/record"
)

// DefaultWorkers bounds Engine.Run when Workers is not set.
const DefaultWorkers = 4

// Stats summarizes rule coverage of one normalization run.
type Stats struct {
	TotalFields       int `json:"total_fields"`
	MappedFields      int `json:"mapped_fields"`
	PassthroughFields int `json:"passthrough_fields"`
}

// Engine applies a RuleSet to raw records.
type Engine struct {
	Rules   *RuleSet
	Workers int
}

// Normalize maps one raw record. Fields without a rule pass through
// unchanged; configured fields missing from rec are not added.
func (e *Engine) Normalize(rec record.Record) record.Record {
	out := make(record.Record, len(rec))
	for field, raw := range rec {
		if r, ok := e.Rules.Lookup(field); ok {
			out[field] = r.Normalize(raw)
			continue
		}
		out[field] = raw
	}
	return out
}

// Coverage counts which of fields have a rule.
func (e *Engine) Coverage(fields []string) Stats {
	st := Stats{TotalFields: len(fields)}
	for _, f := range fields {
		if _, ok := e.Rules.Lookup(f); ok {
			st.MappedFields++
		} else {
			st.PassthroughFields++
		}
	}
	return st
}

// Run normalizes every record of raw on a bounded worker pool. Scheduling
// stops once ctx is done and ctx's error is returned.
func (e *Engine) Run(ctx context.Context, raw record.Set) (record.Set, Stats, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var mu sync.Mutex
	out := make(record.Set, len(raw))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range raw.Documents() {
		if gctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			rec := e.Normalize(raw[id])
			mu.Lock()
			out[id] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}
	return out, e.Coverage(raw.Fields()), nil
}
