package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/policyregex/internal/record"
)

func TestSQLite_SaveLoadReplacesPerDocument(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	first := record.Set{
		"d1": {"no": record.String("1"), "old": record.Null()},
		"d2": {"no": record.List([]string{"a", "b"})},
	}
	if err := db.Save(ctx, "ak_E", StageRaw, "run-1", first); err != nil {
		t.Fatalf("save: %v", err)
	}
	// rerun of d1 only: d1 rows are replaced, d2 is left alone
	second := record.Set{"d1": {"no": record.String("9")}}
	if err := db.Save(ctx, "ak_E", StageRaw, "run-2", second); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.Load(ctx, "ak_E", StageRaw)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := record.Set{
		"d1": {"no": record.String("9")},
		"d2": {"no": record.List([]string{"a", "b"})},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLite_StagesAndCompaniesAreSeparate(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := db.Save(ctx, "ak_E", StageNormalized, "r", record.Set{"d": {"n": record.Int(12500)}}); err != nil {
		t.Fatal(err)
	}
	if err := db.Save(ctx, "axa_E", StageRaw, "r", record.Set{"d": {"n": record.String("25")}}); err != nil {
		t.Fatal(err)
	}
	got, err := db.Load(ctx, "ak_E", StageNormalized)
	if err != nil {
		t.Fatal(err)
	}
	if v := got["d"]["n"]; !v.Equal(record.Int(12500)) {
		t.Fatalf("got %#v", v)
	}
	if raw, _ := db.Load(ctx, "ak_E", StageRaw); len(raw) != 0 {
		t.Fatalf("expected no raw rows for ak_E, got %v", raw)
	}
	cs, err := db.Companies(ctx, StageRaw)
	if err != nil || len(cs) != 1 || cs[0] != "axa_E" {
		t.Fatalf("companies %v err=%v", cs, err)
	}
}
