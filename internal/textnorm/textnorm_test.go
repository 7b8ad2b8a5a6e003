package textnorm

import "testing"

func TestFold_TurkishVariantsShareKey(t *testing.T) {
	want := Fold("SINIRSIZ")
	for _, s := range []string{"sınırsız", "Sinirsiz", "SİNİRSİZ", "sinirsiz"} {
		if got := Fold(s); got != want {
			t.Fatalf("Fold(%q)=%q, want %q", s, got, want)
		}
	}
}

func TestFold_StripsDiacritics(t *testing.T) {
	if got := Fold("ŞÜÇĞÖ"); got != "sucgo" {
		t.Fatalf("got %q", got)
	}
}

func TestLower_UsesTurkishRules(t *testing.T) {
	if got := Lower("IĞDIR İL"); got != "ığdır il" {
		t.Fatalf("got %q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  Yurt  içi\n\tasistans "); got != "Yurt içi asistans" {
		t.Fatalf("got %q", got)
	}
	if got := RemoveSpace("Yurt içi\nasistans"); got != "Yurtiçiasistans" {
		t.Fatalf("got %q", got)
	}
}

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Teminat Limiti: SINIRSIZ (TL)", "sınırsız") {
		t.Fatalf("expected folded containment")
	}
	if ContainsFold("500.000 TL", "sınırsız") {
		t.Fatalf("unexpected match")
	}
	if ContainsFold("anything", "  ") {
		t.Fatalf("blank needle must not match")
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold("Yurt İçi  Asistans", "yurt içi asistans") {
		t.Fatalf("expected equal")
	}
}

func TestASCII(t *testing.T) {
	if got := ASCII("Şirket Ünvanı İstanbul"); got != "Sirket Unvani Istanbul" {
		t.Fatalf("got %q", got)
	}
}
