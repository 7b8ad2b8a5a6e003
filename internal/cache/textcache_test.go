package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTextCache_SaveGet(t *testing.T) {
	c := &TextCache{Dir: t.TempDir()}
	key := KeyFrom("pdf/v1", []byte("%PDF-1.4 ..."))
	if err := c.Save(context.Background(), key, "Poliçe No: 123"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if got != "Poliçe No: 123" {
		t.Fatalf("mismatch: %q", got)
	}
	if _, ok, _ := c.Get(context.Background(), KeyFrom("pdf/v1", []byte("other"))); ok {
		t.Fatalf("unexpected hit for different content")
	}
}

func TestKeyFrom_DependsOnExtractor(t *testing.T) {
	if KeyFrom("pdf/v1", []byte("x")) == KeyFrom("pdf/v2", []byte("x")) {
		t.Fatalf("extractor name must be part of the key")
	}
}

func TestTextCache_StrictPerms(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "text")
	c := &TextCache{Dir: dir, StrictPerms: true}
	key := KeyFrom("txt", []byte("a"))
	if err := c.Save(context.Background(), key, "a"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if got := info.Mode() & 0o777; got != 0o700 {
		t.Fatalf("dir mode = %o, want 0700", got)
	}
	finfo, err := os.Stat(filepath.Join(dir, key+".txt"))
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if got := finfo.Mode() & 0o777; got != 0o600 {
		t.Fatalf("file mode = %o, want 0600", got)
	}
}

func TestEnforceLimits_EvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	c := &TextCache{Dir: dir}
	keys := []string{KeyFrom("t", []byte("1")), KeyFrom("t", []byte("2")), KeyFrom("t", []byte("3"))}
	base := time.Now().Add(-time.Hour)
	for i, k := range keys {
		if err := c.Save(context.Background(), k, "x"); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		mt := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(filepath.Join(dir, k+".txt"), mt, mt); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	// touching the oldest makes it the most recent
	if _, ok, _ := c.Get(context.Background(), keys[0]); !ok {
		t.Fatal("expected hit")
	}
	removed, err := EnforceLimits(dir, 0, 2)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, keys[1]+".txt")); !os.IsNotExist(err) {
		t.Fatalf("expected second entry evicted, stat err=%v", err)
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	c := &TextCache{Dir: dir}
	oldKey, newKey := KeyFrom("t", []byte("old")), KeyFrom("t", []byte("new"))
	for _, k := range []string{oldKey, newKey} {
		if err := c.Save(context.Background(), k, k); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, oldKey+".txt"), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	removed, err := PurgeByAge(dir, 24*time.Hour)
	if err != nil || removed != 1 {
		t.Fatalf("purge: removed=%d err=%v", removed, err)
	}
	if _, err := os.Stat(filepath.Join(dir, newKey+".txt")); err != nil {
		t.Fatalf("fresh entry should remain: %v", err)
	}
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil || len(ents) != 0 {
		t.Fatalf("expected empty dir, got %d entries err=%v", len(ents), err)
	}
	if err := ClearDir("  "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
