package textsource

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/policyregex/internal/cache"
)

// Loader reads documents to text, consulting an optional cache.
type Loader struct {
	Cache   *cache.TextCache
	Workers int
}

// Load returns the text of one document, using the cache when configured.
func (l *Loader) Load(ctx context.Context, d Document) (string, error) {
	content, err := os.ReadFile(d.Path)
	if err != nil {
		return "", err
	}
	var key string
	if l != nil && l.Cache != nil {
		key = cache.KeyFrom(Extractor(d.Path), content)
		if text, ok, err := l.Cache.Get(ctx, key); err == nil && ok {
			return text, nil
		}
	}
	text, err := Text(d.Path, content)
	if err != nil {
		return "", err
	}
	if key != "" {
		if err := l.Cache.Save(ctx, key, text); err != nil {
			log.Debug().Err(err).Str("doc", d.ID).Msg("text cache save failed")
		}
	}
	return text, nil
}

// LoadAll reads every document in docs concurrently and returns id -> text.
// Unreadable documents are logged and left out. A document without text is
// kept as "". Only context cancellation is returned as an error.
func (l *Loader) LoadAll(ctx context.Context, docs []Document) (map[string]string, error) {
	workers := 4
	if l != nil && l.Workers > 0 {
		workers = l.Workers
	}
	start := time.Now()
	var mu sync.Mutex
	out := make(map[string]string, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, d := range docs {
		if err := gctx.Err(); err != nil {
			break
		}
		d := d
		g.Go(func() error {
			text, err := l.Load(gctx, d)
			if err != nil {
				log.Warn().Err(err).Str("doc", d.ID).Msg("skipping unreadable document")
				return nil
			}
			if strings.TrimSpace(text) == "" {
				log.Warn().Str("doc", d.ID).Msg("document has no text")
				text = ""
			}
			mu.Lock()
			out[d.ID] = text
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
	log.Debug().Int("count", len(out)).Dur("elapsed", time.Since(start)).Msg("documents loaded")
	return out, nil
}

// LoadDir lists dir and loads every supported document in it.
func (l *Loader) LoadDir(ctx context.Context, dir string) (map[string]string, error) {
	docs, err := List(dir)
	if err != nil {
		return nil, err
	}
	return l.LoadAll(ctx, docs)
}
