package diffmap_test

import (
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

func TestApplyRoundTrip(t *testing.T) {
	cases := []struct {
		a, b diffmap.Document
	}{
		{
			diffmap.Document{"a": 1, "b": diffmap.Document{"c": false}},
			diffmap.Document{"a": 1, "b": diffmap.Document{"c": true}},
		},
		{
			diffmap.Document{"a": 1, "b": diffmap.Document{"c": false}},
			diffmap.Document{"b": diffmap.Document{"e": true}},
		},
		{
			diffmap.Document{"a": diffmap.Document{"n": 1}, "list": []any{1, 2}},
			diffmap.Document{"a": 5, "list": []any{2}, "when": time.Unix(10, 0).UTC()},
		},
		{
			diffmap.Document{},
			diffmap.Document{"x": diffmap.Document{"y": diffmap.Document{"z": "deep"}}},
		},
	}

	for i, tc := range cases {
		dst := diffmap.CloneDocument(tc.a)
		diffmap.Apply(dst, diffmap.Diff(tc.a, tc.b))
		if !diffmap.Equal(dst, tc.b) {
			t.Fatalf("case %d: apply failed:\ngot  %s\nwant %s", i, spew.Sdump(dst), spew.Sdump(tc.b))
		}
	}
}

func TestApplyCreatesIntermediateDocuments(t *testing.T) {
	dst := diffmap.Document{"a": "scalar"}
	u := &diffmap.Update{}
	u.MarkSet("a.b.c", 1)
	u.MarkSet("x.y", true)
	u.MarkUnset("missing.path")

	diffmap.Apply(dst, u)

	want := diffmap.Document{
		"a": diffmap.Document{"b": diffmap.Document{"c": 1}},
		"x": diffmap.Document{"y": true},
	}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyNamedMapIntermediate(t *testing.T) {
	dst := diffmap.Document{"a": bson.M{"b": 1, "c": 2}}
	u := &diffmap.Update{}
	u.MarkSet("a.b", 3)
	u.MarkUnset("a.c")

	diffmap.Apply(dst, u)

	if diff := cmp.Diff(diffmap.Document{"a": diffmap.Document{"b": 3}}, dst); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyDoesNotAliasUpdate(t *testing.T) {
	nested := diffmap.Document{"c": 1}
	u := &diffmap.Update{}
	u.MarkSet("b", nested)

	dst := diffmap.Document{}
	diffmap.Apply(dst, u)
	nested["c"] = 2

	if got := dst["b"].(diffmap.Document)["c"]; got != 1 {
		t.Fatalf("applied value aliases the update, got %v", got)
	}
}

func TestApplyNil(t *testing.T) {
	// must not panic
	diffmap.Apply(nil, &diffmap.Update{})
	diffmap.Apply(diffmap.Document{}, nil)
}

func BenchmarkApply_Small(b *testing.B) {
	a := diffmap.Document{"a": 1, "b": diffmap.Document{"c": false}}
	bb := diffmap.Document{"a": 1, "b": diffmap.Document{"c": true}}
	chg := diffmap.Diff(a, bb)
	for i := 0; i < b.N; i++ {
		diffmap.Apply(diffmap.CloneDocument(a), chg)
	}
}
