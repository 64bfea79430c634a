package diffmap

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

type customTime time.Time

func TestEqual(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil vs typed nil map", nil, Document(nil), true},
		{"nil vs zero", nil, 0, false},
		{"strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"int vs float", 1, 1.0, true},
		{"int vs uint", -1, uint(1), false},
		{"large int vs nearest float", int64(1<<53 + 1), float64(1 << 53), false},
		{"large int vs exact float", int64(1 << 53), float64(1 << 53), true},
		{"fractional float vs int", 1.5, 1, false},
		{"uint vs float", uint64(1 << 63), float64(1 << 63), true},
		{"negative float vs uint", -1.0, uint(1), false},
		{"int vs out of range float", int64(math.MaxInt64), float64(1 << 63), false},
		{"NaN", math.NaN(), math.NaN(), true},
		{"NaN float32 vs float64", float32(math.NaN()), math.NaN(), true},
		{"NaN vs number", math.NaN(), 0, false},
		{"json number", json.Number("12"), 12, true},
		{"json number float", json.Number("1.5"), 1.5, true},
		{"number vs string", 1, "1", false},
		{"bool vs number", true, 1, false},
		{"dates", now, now.In(time.FixedZone("X", -7200)), true},
		{"date pointer", &now, now, true},
		{"converted date", customTime(now), now, true},
		{"different dates", now, now.Add(time.Nanosecond), false},
		{"binary", []byte("ab"), []byte("ab"), true},
		{"binary vs array", []byte("ab"), []any{97, 98}, false},
		{"arrays", []any{1, "x"}, []any{1, "x"}, true},
		{"array order", []any{1, 2}, []any{2, 1}, false},
		{"array length", []any{1}, []any{1, 1}, false},
		{"nested arrays", []any{[]any{Document{"a": 1}}}, []any{[]any{Document{"a": 1.0}}}, true},
		{"documents", Document{"a": 1, "b": Document{"c": true}}, Document{"b": Document{"c": true}, "a": 1}, true},
		{"document extra key", Document{"a": 1}, Document{"a": 1, "b": 2}, false},
		{"document nil key", Document{"a": 1}, Document{"a": 1, "b": nil}, true},
		{"document vs array", Document{}, []any{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := Equal(tc.b, tc.a); got != tc.want {
				t.Errorf("Equal is not symmetric for %v, %v", tc.a, tc.b)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	var nilPtr *int
	cases := []struct {
		v    any
		want Kind
	}{
		{nil, KindNull},
		{nilPtr, KindNull},
		{[]any(nil), KindNull},
		{Document{}, KindObject},
		{map[string]int{}, KindObject},
		{map[int]string{}, KindOther},
		{[]any{}, KindArray},
		{[2]int{}, KindArray},
		{"s", KindString},
		{json.Number("1"), KindNumber},
		{int8(1), KindNumber},
		{3.5, KindNumber},
		{false, KindBool},
		{time.Time{}, KindDate},
		{[]byte{}, KindBinary},
		{struct{}{}, KindOther},
	}
	for _, tc := range cases {
		if got := KindOf(tc.v); got != tc.want {
			t.Errorf("KindOf(%#v) = %s, want %s", tc.v, got, tc.want)
		}
	}
}

func TestAsDocument(t *testing.T) {
	type labels map[string]string

	doc, ok := asDocument(labels{"app": "web"})
	if !ok || doc["app"] != "web" {
		t.Fatalf("expected named map to convert, got %v %v", doc, ok)
	}
	if _, ok := asDocument([]any{}); ok {
		t.Fatal("arrays are not documents")
	}
	if _, ok := asDocument(Document(nil)); ok {
		t.Fatal("nil documents have no keys")
	}
}
