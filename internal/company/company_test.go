package company

import (
	"testing"
)

func TestDetect_HighestCountWins(t *testing.T) {
	tbl := DefaultTable()
	text := "ALLIANZ SİGORTA A.Ş. ... Sigortacı: Allianz Sigorta ... axa"
	res, ok := tbl.Detect(text)
	if !ok || res.Company != "allianz" {
		t.Fatalf("got %+v ok=%v", res, ok)
	}
	if res.Counts["axa"] != 1 {
		t.Fatalf("expected one axa hit, got %d", res.Counts["axa"])
	}
}

func TestDetect_FoldsTurkishLetters(t *testing.T) {
	res, ok := DefaultTable().Detect("TÜRKİYE KATILIM SİGORTA")
	if !ok || res.Company != "turkiyekatilim" {
		t.Fatalf("got %+v ok=%v", res, ok)
	}
}

func TestDetect_NoHit(t *testing.T) {
	if res, ok := DefaultTable().Detect("kasko poliçesi"); ok {
		t.Fatalf("unexpected detection %+v", res)
	}
}

func TestParseTable_RequiresPhrases(t *testing.T) {
	if _, err := ParseTable([]byte("- company: x\n")); err == nil {
		t.Fatalf("expected error")
	}
	tbl, err := ParseTable([]byte("- company: x\n  phrases: [x sigorta]\n"))
	if err != nil || len(tbl) != 1 {
		t.Fatalf("got %v %v", tbl, err)
	}
}

func TestFromDir(t *testing.T) {
	if got := FromDir("ak_E"); got != "ak" {
		t.Fatalf("got %q", got)
	}
}
