package textsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/policyregex/internal/cache"
)

func TestFromHTML_TableRowsBecomeLines(t *testing.T) {
	page := `<!doctype html>
	<html>
	  <head><title>Poliçe</title><style>td{color:red}</style></head>
	  <body>
	    <script>var x = 1;</script>
	    <h1>Kasko Poliçesi</h1>
	    <table>
	      <tr><td>Poliçe No</td><td>: 123456</td></tr>
	      <tr><td>Teminat</td><td>SINIRSIZ</td></tr>
	    </table>
	  </body>
	</html>`
	doc := FromHTML([]byte(page))
	if doc.Title != "Poliçe" {
		t.Fatalf("title %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Poliçe No : 123456\n") {
		t.Fatalf("expected row on its own line, got %q", doc.Text)
	}
	if strings.Contains(doc.Text, "var x") || strings.Contains(doc.Text, "color") {
		t.Fatalf("script/style text leaked: %q", doc.Text)
	}
}

func TestFromHTML_PreservesPre(t *testing.T) {
	doc := FromHTML([]byte("<body><pre>A:  1\nB:  2</pre></body>"))
	if doc.Text != "A: 1\nB: 2" {
		t.Fatalf("got %q", doc.Text)
	}
}

func TestList_PrefersPDFForSharedStem(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.html", "a.txt", "notes.md", "c.PDF"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}
	docs, err := List(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []Document{
		{ID: "a", Path: filepath.Join(dir, "a.txt")},
		{ID: "b", Path: filepath.Join(dir, "b.txt")},
		{ID: "c", Path: filepath.Join(dir, "c.PDF")},
	}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Fatalf("documents mismatch (-want +got):\n%s", diff)
	}
}

func TestText_ComposesNFC(t *testing.T) {
	decomposed := "Polic\u0327e"
	got, err := Text("x.txt", []byte(decomposed))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Poliçe" {
		t.Fatalf("got %q", got)
	}
	if _, err := Text("x.docx", nil); err == nil {
		t.Fatalf("expected unsupported error")
	}
}

func TestLoader_LoadDirKeepsEmptyAndUsesCache(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"p1.txt":  "Poliçe No: 1",
		"p2.html": "<body><p>Poliçe No: 2</p></body>",
		"p3.txt":  "   \n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tc := &cache.TextCache{Dir: filepath.Join(t.TempDir(), "text")}
	l := &Loader{Cache: tc, Workers: 2}
	got, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]string{"p1": "Poliçe No: 1", "p2": "Poliçe No: 2", "p3": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("texts mismatch (-want +got):\n%s", diff)
	}
	key := cache.KeyFrom(Extractor("p2.html"), []byte(files["p2.html"]))
	if text, ok, _ := tc.Get(context.Background(), key); !ok || text != "Poliçe No: 2" {
		t.Fatalf("expected cached html text, got %q ok=%v", text, ok)
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := &Loader{}
	if _, err := l.LoadAll(ctx, []Document{{ID: "x", Path: "/nonexistent.txt"}}); err == nil {
		t.Fatalf("expected context error")
	}
}
