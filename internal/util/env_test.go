package util

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

func TestInstructionEnv(t *testing.T) {
	env := InstructionEnv{Op: diffmap.OpSet, Path: "spec.template.image", Value: "nginx"}

	if !env.Under("spec") || !env.Under("spec.template") || env.Under("spe") || env.Under("status") {
		t.Error("Under matched the wrong prefixes")
	}
	if !env.Under() {
		t.Error("Under without prefixes should match")
	}
	if env.Depth() != 3 {
		t.Errorf("want depth 3, got %d", env.Depth())
	}
	if !env.IsSet() || env.IsUnset() {
		t.Error("wrong operation")
	}
	if env.Kind() != "string" {
		t.Errorf("want kind string, got %s", env.Kind())
	}
}

func TestFilterByExpr(t *testing.T) {
	u := diffmap.Diff(
		diffmap.Document{"spec": diffmap.Document{"replicas": 1, "paused": true}, "status": diffmap.Document{"ready": 1}},
		diffmap.Document{"spec": diffmap.Document{"replicas": 2}, "status": diffmap.Document{"ready": 2}, "note": "x"},
	)

	cases := []struct {
		expression string
		wantSet    []string
		wantUnset  []string
	}{
		{"All()", []string{"note", "spec.replicas", "status.ready"}, []string{"spec.paused"}},
		{"None()", nil, nil},
		{`Under("spec")`, []string{"spec.replicas"}, []string{"spec.paused"}},
		{`IsSet() && Depth() > 1`, []string{"spec.replicas", "status.ready"}, nil},
		{`IsUnset() || Kind() == "string"`, []string{"note"}, []string{"spec.paused"}},
		{`Path matches "ready$"`, []string{"status.ready"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.expression, func(t *testing.T) {
			program, err := CompileFilter(tc.expression)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := FilterByExpr(u, program)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if diff := cmp.Diff(tc.wantSet, got.Set.Paths()); diff != "" {
				t.Errorf("$set mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantUnset, got.Unset.Paths()); diff != "" {
				t.Errorf("$unset mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileFilterRejectsNonBool(t *testing.T) {
	if _, err := CompileFilter(`Path`); err == nil {
		t.Fatal("expected a compile error for a non-boolean expression")
	}
}
