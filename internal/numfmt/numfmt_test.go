package numfmt

import "testing"

func TestParse_Turkish(t *testing.T) {
	cases := []struct {
		in       string
		integer  int64
		decimals string
	}{
		{"2.500.000,00", 2500000, "00"},
		{"2.500.000,75", 2500000, "75"},
		{"500.000", 500000, ""},
		{"1.000.-TL", 1000, ""},
		{"750.000 TL", 750000, ""},
		{"₺ 12.345,6", 12345, "6"},
		{"25", 25, ""},
	}
	for _, c := range cases {
		n, ok := Parse(c.in, Turkish)
		if !ok || n.Integer != c.integer || n.Decimals != c.decimals {
			t.Fatalf("Parse(%q) = %+v ok=%v, want %d,%q", c.in, n, ok, c.integer, c.decimals)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "  ", "None", "null", "abc", "1,2,3", "12a", "-"} {
		if n, ok := Parse(in, Turkish); ok {
			t.Fatalf("Parse(%q) unexpectedly ok: %+v", in, n)
		}
	}
}

func TestParse_English(t *testing.T) {
	n, ok := Parse("2,500,000.50", English)
	if !ok || n.Integer != 2500000 || n.Decimals != "50" {
		t.Fatalf("got %+v ok=%v", n, ok)
	}
}

func TestParse_Auto(t *testing.T) {
	cases := map[string]int64{
		"2.500.000,75": 2500000,
		"2,500,000.75": 2500000,
		"2.500.000":    2500000,
		"2,500,000":    2500000,
		"12,5":         12,
		"12.5":         12,
	}
	for in, want := range cases {
		got, ok := ParseInt(in, Auto)
		if !ok || got != want {
			t.Fatalf("ParseInt(%q, Auto) = %d ok=%v, want %d", in, got, ok, want)
		}
	}
}

func TestStripCurrency(t *testing.T) {
	cases := map[string]string{
		"1.000.-TL":   "1.000",
		"1.000-TL":    "1.000",
		"500 TL":      "500",
		"500tl":       "500",
		"500.-":       "500",
		"₺500":        "500",
		"250 TRY":     "250",
		"Sınırsız TL": "Sınırsız",
	}
	for in, want := range cases {
		if got := StripCurrency(in); got != want {
			t.Fatalf("StripCurrency(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestAmount(t *testing.T) {
	if got := Amount(Number{Integer: 2500000, Decimals: "00"}); got != " 2,500,000 " {
		t.Fatalf("got %q", got)
	}
	if got := Amount(Number{Integer: 750000, Decimals: "50"}); got != " 750,000.50 " {
		t.Fatalf("got %q", got)
	}
	if got := Group(999); got != "999" {
		t.Fatalf("got %q", got)
	}
	if got := Group(-1234567); got != "-1,234,567" {
		t.Fatalf("got %q", got)
	}
}

func TestFindNumber(t *testing.T) {
	got, ok := FindNumber("Limit 2.500.000,00 TL'dir")
	if !ok || got != "2.500.000,00" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
	if _, ok := FindNumber("yok"); ok {
		t.Fatalf("expected no number")
	}
}

func TestNumber_Float(t *testing.T) {
	if f := (Number{Integer: 12, Decimals: "5"}).Float(); f != 12.5 {
		t.Fatalf("got %v", f)
	}
}
