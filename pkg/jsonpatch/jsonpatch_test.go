package jsonpatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wI2L/jsondiff"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

func TestPointer(t *testing.T) {
	cases := map[string]string{
		"":        "",
		"a":       "/a",
		"a.b":     "/a/b",
		"a/b.c~d": "/a~1b/c~0d",
		"items.$": "/items/$",
	}
	for in, want := range cases {
		if got := Pointer(in); got != want {
			t.Errorf("Pointer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromUpdate(t *testing.T) {
	u := diffmap.Diff(
		diffmap.Document{"a": 1, "b": diffmap.Document{"c": 1, "d": 2}},
		diffmap.Document{"b": diffmap.Document{"c": 2}, "e": "x"},
	)

	got := FromUpdate(u)
	want := jsondiff.Patch{
		{Type: jsondiff.OperationRemove, Path: "/a"},
		{Type: jsondiff.OperationRemove, Path: "/b/d"},
		{Type: jsondiff.OperationAdd, Path: "/b/c", Value: 2},
		{Type: jsondiff.OperationAdd, Path: "/e", Value: "x"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if FromUpdate(&diffmap.Update{}) != nil {
		t.Error("empty update should yield no operations")
	}
}

func TestApplyMatchesDiffmapApply(t *testing.T) {
	oldDoc := diffmap.Document{
		"name":  "web",
		"spec":  diffmap.Document{"replicas": 1.0, "ports": []any{80.0}},
		"stale": true,
	}
	newDoc := diffmap.Document{
		"name": "web",
		"spec": diffmap.Document{"replicas": 3.0, "ports": []any{80.0, 443.0}, "paused": false},
	}

	got, err := Apply(oldDoc, diffmap.Diff(oldDoc, newDoc))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(newDoc, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if _, ok := oldDoc["stale"]; !ok {
		t.Error("Apply must not modify its input")
	}
}

func TestApplyCreatesParents(t *testing.T) {
	u := &diffmap.Update{}
	u.MarkSet("a.b.c", "x")
	u.MarkUnset("missing.key")

	got, err := Apply(nil, u)
	if err != nil {
		t.Fatal(err)
	}
	want := diffmap.Document{"a": map[string]any{"b": map[string]any{"c": "x"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare(t *testing.T) {
	patch, err := Compare(diffmap.Document{"a": 1}, diffmap.Document{"a": 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(patch) != 1 || patch[0].Type != jsondiff.OperationReplace || patch[0].Path != "/a" {
		t.Errorf("unexpected patch %v", patch)
	}
}
