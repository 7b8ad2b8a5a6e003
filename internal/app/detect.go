package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/policyregex/internal/company"
	"github.com/hyperifyio/policyregex/internal/textsource"
)

// Detection is the issuer guess for one document.
type Detection struct {
	Document string
	Path     string
	Company  string
	Count    int
	Found    bool
}

// Detect guesses the issuer of every document at paths. A directory
// contributes its supported documents; unreadable documents are skipped.
func (a *App) Detect(ctx context.Context, table company.Table, paths ...string) ([]Detection, error) {
	var docs []textsource.Document
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if st.IsDir() {
			listed, err := textsource.List(p)
			if err != nil {
				return nil, err
			}
			docs = append(docs, listed...)
			continue
		}
		name := filepath.Base(p)
		docs = append(docs, textsource.Document{ID: strings.TrimSuffix(name, filepath.Ext(name)), Path: p})
	}
	out := make([]Detection, 0, len(docs))
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := a.loader.Load(ctx, d)
		if err != nil {
			log.Warn().Err(err).Str("doc", d.ID).Msg("skipping unreadable document")
			continue
		}
		res, ok := table.Detect(text)
		out = append(out, Detection{Document: d.ID, Path: d.Path, Company: res.Company, Count: res.Count, Found: ok})
	}
	return out, nil
}
