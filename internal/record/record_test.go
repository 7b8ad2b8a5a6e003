package record

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValue_MarshalShapes(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null(), "null"},
		{String("Var"), `"Var"`},
		{String("Sınırsız <TL>"), `"Sınırsız <TL>"`},
		{List(nil), "[]"},
		{List([]string{"1", "1"}), `["1","1"]`},
		{Int(12500), "12500"},
		{Float(2.5), "2.5"},
	}
	for _, c := range cases {
		b, err := json.Marshal(c.v)
		if err != nil {
			t.Fatalf("marshal %v: %v", c.v.Kind(), err)
		}
		if string(b) != c.want {
			t.Fatalf("marshal %v: got %s want %s", c.v.Kind(), b, c.want)
		}
	}
}

func TestValue_UnmarshalIntegralNumbersAsInt(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte("2500000"), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n, ok := v.IntValue(); !ok || n != 2500000 {
		t.Fatalf("expected int 2500000, got %#v", v)
	}
	if err := json.Unmarshal([]byte("1.25"), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f, ok := v.FloatValue(); !ok || f != 1.25 {
		t.Fatalf("expected float 1.25, got %#v", v)
	}
}

func TestValue_UnmarshalRejectsNonStringLists(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte("[1,2]"), &v); err == nil {
		t.Fatalf("expected error for numeric list")
	}
}

func TestValue_EmptyListIsNotNull(t *testing.T) {
	v := List(nil)
	if v.IsNull() {
		t.Fatalf("empty list must not be null")
	}
	if !v.Empty() {
		t.Fatalf("empty list must count as empty")
	}
}

func TestSet_TransposeFillsMissingFieldsWithNull(t *testing.T) {
	s := Set{
		"doc1": {"police_no": String("123"), "teminat": List([]string{"a"})},
		"doc2": {"police_no": Null()},
	}
	bf := s.Transpose()
	if !bf["teminat"]["doc2"].IsNull() {
		t.Fatalf("expected null for missing field in doc2")
	}
	back := bf.Set()
	want := Set{
		"doc1": {"police_no": String("123"), "teminat": List([]string{"a"})},
		"doc2": {"police_no": Null(), "teminat": Null()},
	}
	if diff := cmp.Diff(want, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile_RoundTripWithMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ak_E.json")
	s := Set{
		"ak_E_1": {"tutar": String(" 2,500,000 "), "limit": Int(12500)},
	}
	meta := map[string]any{"company": "ak_E"}
	if err := WriteFile(path, s, meta); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, rawMeta, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(rawMeta), `"ak_E"`) {
		t.Fatalf("metadata not preserved: %s", rawMeta)
	}
}

func TestMarshal_IsDeterministic(t *testing.T) {
	s := Set{
		"b": {"x": String("1"), "y": Null()},
		"a": {"x": String("2"), "y": List([]string{"p", "q"})},
	}
	first, err := Marshal(s, nil)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Marshal(s, nil)
		if string(again) != string(first) {
			t.Fatalf("non-deterministic output")
		}
	}
}
