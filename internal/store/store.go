// Package store persists raw and normalized result records in SQLite so
// runs can be compared and queried without re-reading output files.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/hyperifyio/policyregex/internal/record"
)

// Stage distinguishes raw extraction output from normalized output.
type Stage string

const (
	StageRaw        Stage = "raw"
	StageNormalized Stage = "normalized"
)

// ResultRepository stores result sets keyed by (company, stage, document,
// field).
type ResultRepository interface {
	Save(ctx context.Context, company string, stage Stage, runID string, s record.Set) error
	Load(ctx context.Context, company string, stage Stage) (record.Set, error)
	Companies(ctx context.Context, stage Stage) ([]string, error)
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS results (
	company    TEXT NOT NULL,
	stage      TEXT NOT NULL,
	document   TEXT NOT NULL,
	field      TEXT NOT NULL,
	value_json TEXT NOT NULL,
	run_id     TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (company, stage, document, field)
);
CREATE INDEX IF NOT EXISTS results_company_field ON results (company, stage, field);
`

// SQLite is a ResultRepository backed by a single database file.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; an in-memory database is per connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("result store opened")
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Save replaces, inside one transaction, every stored row of each document
// in set for (company, stage) with the document's current record.
func (s *SQLite) Save(ctx context.Context, company string, stage Stage, runID string, set record.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	del, err := tx.PrepareContext(ctx, `DELETE FROM results WHERE company = ? AND stage = ? AND document = ?`)
	if err != nil {
		return err
	}
	defer del.Close()
	ins, err := tx.PrepareContext(ctx, `INSERT INTO results (company, stage, document, field, value_json, run_id, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ins.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	rows := 0
	for _, doc := range set.Documents() {
		if _, err := del.ExecContext(ctx, company, string(stage), doc); err != nil {
			return fmt.Errorf("clear %s: %w", doc, err)
		}
		rec := set[doc]
		for _, field := range rec.Fields() {
			b, err := json.Marshal(rec[field])
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", doc, field, err)
			}
			if _, err := ins.ExecContext(ctx, company, string(stage), doc, field, string(b), runID, now); err != nil {
				return fmt.Errorf("insert %s/%s: %w", doc, field, err)
			}
			rows++
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug().Str("company", company).Str("stage", string(stage)).Int("count", rows).Msg("results stored")
	return nil
}

// Load returns the stored set for (company, stage).
func (s *SQLite) Load(ctx context.Context, company string, stage Stage) (record.Set, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document, field, value_json FROM results WHERE company = ? AND stage = ? ORDER BY document, field`, company, string(stage))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := record.Set{}
	for rows.Next() {
		var doc, field, js string
		if err := rows.Scan(&doc, &field, &js); err != nil {
			return nil, err
		}
		var v record.Value
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", doc, field, err)
		}
		rec, ok := out[doc]
		if !ok {
			rec = record.Record{}
			out[doc] = rec
		}
		rec[field] = v
	}
	return out, rows.Err()
}

// Companies lists companies with stored rows for stage.
func (s *SQLite) Companies(ctx context.Context, stage Stage) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT company FROM results WHERE stage = ? ORDER BY company`, string(stage))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
