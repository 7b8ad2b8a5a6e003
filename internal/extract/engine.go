package extract

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/policyregex/internal/record"
)

// DefaultWorkers bounds Engine.Run when Workers is not set.
const DefaultWorkers = 4

// Engine runs a company's field specs over a document corpus. It holds no
// mutable state; one Engine may serve concurrent runs.
type Engine struct {
	Specs   Specs
	Workers int
}

// Extract produces the raw record for one document: every configured field
// is present, null or an empty list when nothing matched.
func (e *Engine) Extract(text string) record.Record {
	rec := make(record.Record, len(e.Specs))
	for _, f := range e.Specs {
		rec[f.Name] = f.Match(text)
	}
	return rec
}

// Run extracts every document in docs (id -> text) and returns id -> raw
// record. Documents are scheduled in id order on a bounded worker pool;
// once ctx is done no further documents are scheduled and ctx's error is
// returned.
func (e *Engine) Run(ctx context.Context, docs map[string]string) (record.Set, error) {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var mu sync.Mutex
	out := make(record.Set, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			rec := e.Extract(docs[id])
			mu.Lock()
			out[id] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
