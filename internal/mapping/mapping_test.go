package mapping

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/policyregex/internal/config"
	"github.com/hyperifyio/policyregex/internal/record"
)

func mustRules(t *testing.T, src string) *RuleSet {
	t.Helper()
	rs, err := ParseRuleSet("test_E_map.json", []byte(src))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	return rs
}

func rule(t *testing.T, rs *RuleSet, field string) Rule {
	t.Helper()
	r, ok := rs.Lookup(field)
	if !ok {
		t.Fatalf("no rule for %s", field)
	}
	return r
}

func TestFixedValue_IgnoresRaw(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"asistans": {"type": "fixed_value", "output": "Var"}}}`)
	r := rule(t, rs, "asistans")
	for _, raw := range []record.Value{record.Null(), record.String("Yok"), record.List([]string{"a"})} {
		if got := r.Normalize(raw); !got.Equal(record.String("Var")) {
			t.Fatalf("Normalize(%#v)=%#v", raw, got)
		}
	}
}

func TestPatternToValue_NullSentinel(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {
		"cam": {"type": "pattern_to_value", "mappings": [
			{"input_pattern": null, "output": "Var"},
			{"input_pattern": "muafiyetsiz", "output": "Muafiyetsiz"}
		]},
		"ikame": {"type": "pattern_to_value", "default": "Yok", "mappings": [
			{"input_pattern": "\\d+\\s*gün", "output": "Var"}
		]}
	}}`)
	if got := rule(t, rs, "cam").Normalize(record.Null()); !got.Equal(record.String("Var")) {
		t.Fatalf("null sentinel: got %#v", got)
	}
	if got := rule(t, rs, "ikame").Normalize(record.Null()); !got.Equal(record.String("Yok")) {
		t.Fatalf("missing value without sentinel takes the default, got %#v", got)
	}
	if got := rule(t, rs, "cam").Normalize(record.String("-")); !got.Equal(record.String("-")) {
		t.Fatalf("no default keeps the raw value, got %#v", got)
	}
	if got := rule(t, rs, "ikame").Normalize(record.String("7 GÜN ikame araç")); !got.Equal(record.String("Var")) {
		t.Fatalf("pattern match: got %#v", got)
	}
	if got := rule(t, rs, "ikame").Normalize(record.String("yok")); !got.Equal(record.String("Yok")) {
		t.Fatalf("default: got %#v", got)
	}
}

func TestPatternToValue_FirstEntryWins(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"f": {"type": "pattern_to_value", "mappings": [
		{"input_pattern": "orijinal", "output": "A"},
		{"input_pattern": "orijinal parça", "output": "B"}
	]}}}`)
	if got := rule(t, rs, "f").Normalize(record.String("Orijinal parça kullanılır")); !got.Equal(record.String("A")) {
		t.Fatalf("got %#v", got)
	}
}

func TestPatternToValue_NoMatchPreservesValue(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"f": {"type": "pattern_to_value", "mappings": [
		{"input_exact": "Yurt İçi", "output": "YI"}
	]}}}`)
	r := rule(t, rs, "f")
	if got := r.Normalize(record.String("Yurt Dışı")); !got.Equal(record.String("Yurt Dışı")) {
		t.Fatalf("got %#v", got)
	}
	if got := r.Normalize(record.String("YURT  İÇİ")); !got.Equal(record.String("YI")) {
		t.Fatalf("folded exact match: got %#v", got)
	}
	if got := r.Normalize(record.String("Yurtiçi")); !got.Equal(record.String("YI")) {
		t.Fatalf("space-insensitive exact match: got %#v", got)
	}
}

func TestPatternToValue_ListFirstMatchingElement(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"f": {"type": "pattern_to_value", "mappings": [
		{"input_contains": "anlaşmalı servis", "output": "Anlaşmalı"},
		{"input_contains": "yetkili servis", "output": "Yetkili"}
	]}}}`)
	r := rule(t, rs, "f")
	raw := record.List([]string{"-", "Yetkili servis", "Anlaşmalı servis"})
	if got := r.Normalize(raw); !got.Equal(record.String("Yetkili")) {
		t.Fatalf("got %#v", got)
	}
	unmatched := record.List([]string{"x", "y"})
	if got := r.Normalize(unmatched); !got.Equal(unmatched) {
		t.Fatalf("unmatched list must pass through, got %#v", got)
	}
	if got := r.Normalize(record.List(nil)); !got.Equal(record.List(nil)) {
		t.Fatalf("empty list without default must stay empty, got %#v", got)
	}
}

func TestAmountNormalization_TurkishFormat(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"limit": {"type": "amount_normalization",
		"sentinels": [{"phrase": "SINIRSIZ", "output": " 999,999,999 "}]}}}`)
	r := rule(t, rs, "limit")
	cases := map[string]record.Value{
		"2.500.000,00":       record.String(" 2,500,000 "),
		"2.500.000,00 TL":    record.String(" 2,500,000 "),
		"1.000.-TL":          record.String(" 1,000 "),
		"750.000,50":         record.String(" 750,000.50 "),
		"Limit: 500.000 TL":  record.String(" 500,000 "),
		"Sınırsız":           record.String(" 999,999,999 "),
		"SINIRSIZ (100.000)": record.String(" 999,999,999 "),
		"belirtilmemiş":      record.Null(),
	}
	for in, want := range cases {
		if got := r.Normalize(record.String(in)); !got.Equal(want) {
			t.Fatalf("Normalize(%q)=%#v, want %#v", in, got, want)
		}
	}
	if got := r.Normalize(record.Null()); !got.IsNull() {
		t.Fatalf("null input: got %#v", got)
	}
}

func TestAmountNormalization_EntriesAndDefault(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"limit": {"type": "amount_normalization", "default": "-",
		"mappings": [
			{"pattern": "rayiç", "output": "Rayiç Değer"},
			{"pattern": "kişi başı\\s*([\\d.,]+)", "transform": "format_turkish_amount"},
			{"pattern": "toplam\\s*([\\d.]+)", "transform": "simple"}
		]}}}`)
	r := rule(t, rs, "limit")
	cases := map[string]record.Value{
		"Araç rayiç değeri":       record.String("Rayiç Değer"),
		"Kişi başı 250.000,00 TL": record.String(" 250,000 "),
		"toplam 1.500.000":        record.String(" 1,500,000 "),
		"yok":                     record.String("-"),
	}
	for in, want := range cases {
		if got := r.Normalize(record.String(in)); !got.Equal(want) {
			t.Fatalf("Normalize(%q)=%#v, want %#v", in, got, want)
		}
	}
}

func TestDurationExtraction_PicksMaximum(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"ikame_sure": {"type": "duration_extraction", "default": "-",
		"extract_patterns": [{"pattern": "(\\d+)\\s*gün", "group": 1}]}}}`)
	r := rule(t, rs, "ikame_sure")
	raw := record.List([]string{"-", "2 defa ... en fazla 7 gün ...", "en fazla 30 gün ..."})
	if got := r.Normalize(raw); !got.Equal(record.String("30")) {
		t.Fatalf("got %#v", got)
	}
	if got := r.Normalize(record.List([]string{"-"})); !got.Equal(record.String("-")) {
		t.Fatalf("no duration: got %#v", got)
	}
	if got := r.Normalize(record.String("yılda 15 gün")); !got.Equal(record.String("15")) {
		t.Fatalf("scalar: got %#v", got)
	}
}

func TestDurationExtraction_LegacyAliasAndMappings(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"d": {"type": "extract_normalize",
		"extract_patterns": [{"pattern": "(\\d+)\\s*gün"}],
		"mappings": [{"input": "365", "output": "1 Yıl"}]}}}`)
	r := rule(t, rs, "d")
	if r.Type() != TypeDurationExtraction {
		t.Fatalf("alias should map to duration_extraction, got %s", r.Type())
	}
	if got := r.Normalize(record.List([]string{"365 gün", "30 gün"})); !got.Equal(record.String("1 Yıl")) {
		t.Fatalf("got %#v", got)
	}
	if got := r.Normalize(record.Null()); !got.IsNull() {
		t.Fatalf("null without default: got %#v", got)
	}
}

func TestNumericConversion_Multiplier(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {
		"kademe": {"type": "numeric_conversion", "mappings": [{"input_pattern": "25", "multiplier": 500}]},
		"limit": {"type": "numeric_conversion", "mappings": [{"input_exact": "SINIRSIZ", "output": 999999999}]},
		"en": {"type": "numeric_conversion", "number_format": "english"}
	}}`)
	kademe := rule(t, rs, "kademe")
	for in, want := range map[string]int64{"25": 12500, " 25 ": 12500, "250": 250, "125": 125, "2.500": 2500} {
		if got := kademe.Normalize(record.String(in)); !got.Equal(record.Int(want)) {
			t.Fatalf("kademe %q: got %#v, want %d", in, got, want)
		}
	}
	lim := rule(t, rs, "limit")
	if got := lim.Normalize(record.String("sınırsız")); !got.Equal(record.Int(999999999)) {
		t.Fatalf("output entry: got %#v", got)
	}
	if got := lim.Normalize(record.String("2.500.000,75")); !got.Equal(record.Int(2500000)) {
		t.Fatalf("turkish parse: got %#v", got)
	}
	if got := lim.Normalize(record.String("çok")); !got.IsNull() {
		t.Fatalf("unparseable: got %#v", got)
	}
	if got := lim.Normalize(record.List([]string{"-", "1.000 TL"})); !got.Equal(record.Int(1000)) {
		t.Fatalf("list: got %#v", got)
	}
	if got := rule(t, rs, "en").Normalize(record.String("2,500,000.00")); !got.Equal(record.Int(2500000)) {
		t.Fatalf("english: got %#v", got)
	}
}

func TestParseRuleSet_ConfigErrors(t *testing.T) {
	cases := map[string]string{
		"unknown type":        `{"field_mappings": {"f": {"type": "guess"}}}`,
		"fixed without out":   `{"field_mappings": {"f": {"type": "fixed_value"}}}`,
		"p2v without maps":    `{"field_mappings": {"f": {"type": "pattern_to_value"}}}`,
		"entry without out":   `{"field_mappings": {"f": {"type": "pattern_to_value", "mappings": [{"input_pattern": "x"}]}}}`,
		"entry no matcher":    `{"field_mappings": {"f": {"type": "pattern_to_value", "mappings": [{"output": "x"}]}}}`,
		"bad regex":           `{"field_mappings": {"f": {"type": "pattern_to_value", "mappings": [{"input_pattern": "(x", "output": "y"}]}}}`,
		"duration no pattern": `{"field_mappings": {"f": {"type": "duration_extraction"}}}`,
		"numeric text output": `{"field_mappings": {"f": {"type": "numeric_conversion", "mappings": [{"input_exact": "x", "output": "lots"}]}}}`,
		"missing mappings":    `{"company": "x"}`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRuleSet("test_E_map.json", []byte(src)); !errors.Is(err, config.ErrConfig) {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
}

func TestParseRuleSet_Metadata(t *testing.T) {
	rs := mustRules(t, `{"company": "ak_E", "version": 2, "field_mappings": {}}`)
	if rs.Company != "ak_E" || rs.Version != "2" {
		t.Fatalf("got company=%q version=%q", rs.Company, rs.Version)
	}
	rs = mustRules(t, `{"field_mappings": {}}`)
	if rs.Version != DefaultVersion {
		t.Fatalf("expected default version, got %q", rs.Version)
	}
}

func TestEngine_RunPassesThroughUnmappedFields(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {
		"cam": {"type": "pattern_to_value", "mappings": [{"input_pattern": null, "output": "Var"}]},
		"unused": {"type": "fixed_value", "output": "x"}
	}}`)
	raw := record.Set{
		"d1": {"cam": record.Null(), "police_no": record.String("123")},
		"d2": {"cam": record.String("Yok"), "police_no": record.Null()},
	}
	e := &Engine{Rules: rs, Workers: 2}
	got, st, err := e.Run(context.Background(), raw)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := record.Set{
		"d1": {"cam": record.String("Var"), "police_no": record.String("123")},
		"d2": {"cam": record.String("Yok"), "police_no": record.Null()},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Stats{TotalFields: 2, MappedFields: 1, PassthroughFields: 1}, st); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_RunIsDeterministic(t *testing.T) {
	rs := mustRules(t, `{"field_mappings": {"limit": {"type": "amount_normalization"}}}`)
	raw := record.Set{}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		raw[id] = record.Record{"limit": record.String("1.250.000,00 TL")}
	}
	e := &Engine{Rules: rs}
	first, _, err := e.Run(context.Background(), raw)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := record.Marshal(first, nil)
	again, _, _ := e.Run(context.Background(), raw)
	b, _ := record.Marshal(again, nil)
	if string(a) != string(b) {
		t.Fatalf("runs differ:\n%s\n%s", a, b)
	}
}
