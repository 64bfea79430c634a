package diffpreview

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

var (
	previewOld = diffmap.Document{
		"name": "web",
		"spec": diffmap.Document{"replicas": 1, "paused": true},
		"tags": []any{"a"},
	}
	previewNew = diffmap.Document{
		"name": "web",
		"spec": diffmap.Document{"replicas": 3, "image": diffmap.Document{"tag": "v2"}},
		"tags": []any{"a", "b"},
	}
)

func TestRender(t *testing.T) {
	got := Render(diffmap.Diff(previewOld, previewNew), PlainTheme)
	want := "- spec.paused\n" +
		"+ spec.image: {tag: \"v2\"}\n" +
		"+ spec.replicas: 3\n" +
		"+ tags: [\"a\", \"b\"]\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTree(t *testing.T) {
	got := RenderTree(previewOld, diffmap.Diff(previewOld, previewNew), PlainTheme)
	want := "spec:\n" +
		"  image:\n" +
		"    tag: \"v2\"\n" +
		"  paused: true\n" +
		"  replicas: 3\n" +
		"tags:\n" +
		"  - \"a\"\n" +
		"  - \"b\"\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAnnotate(t *testing.T) {
	root := Annotate(previewOld, diffmap.Diff(previewOld, previewNew))

	spec := root.Children["spec"]
	if spec == nil {
		t.Fatal("missing spec node")
	}
	cases := map[string]ChangeType{
		"image":    Added,
		"paused":   Removed,
		"replicas": Modified,
	}
	for key, want := range cases {
		if got := spec.Children[key].Change; got != want {
			t.Errorf("%s: got change %d, want %d", key, got, want)
		}
	}
	if v := spec.Children["paused"].Value; v != true {
		t.Errorf("removed node should carry the old value, got %v", v)
	}
	if _, ok := root.Children["name"]; ok {
		t.Error("unchanged keys must not be annotated")
	}
}

func TestFormatScalar(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	cases := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"x", `"x"`},
		{1.5, "1.5"},
		{false, "false"},
		{when, "2024-05-06T07:08:09Z"},
		{[]byte("hi"), "!!binary aGk="},
		{diffmap.Document{"b": 1, "a": []any{}}, "{a: [], b: 1}"},
	}
	for _, tc := range cases {
		if got := formatScalar(tc.in); got != tc.want {
			t.Errorf("formatScalar(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderStats(t *testing.T) {
	cases := map[diffmap.Stats]string{
		{}:                      "no changes",
		{Sets: 1}:               "1 set, 0 unsets",
		{Sets: 2, Unsets: 1}:    "2 sets, 1 unset",
		{Sets: 1500, Unsets: 3}: "1,500 sets, 3 unsets",
	}
	for in, want := range cases {
		if got := RenderStats(in); got != want {
			t.Errorf("RenderStats(%+v) = %q, want %q", in, got, want)
		}
	}
}

func TestNewTheme(t *testing.T) {
	theme := NewTheme(Palette{String: "#111111", AddedFg: "#222222", AddedBg: "#333333"})

	if got := theme.StringStyle.GetForeground(); got != lipgloss.Color("#111111") {
		t.Errorf("string foreground = %v", got)
	}
	if got := theme.AddedBg.GetBackground(); got != lipgloss.Color("#333333") {
		t.Errorf("added background = %v", got)
	}
	if !theme.NullStyle.GetItalic() {
		t.Error("null values should be italic")
	}
	if got := PlainTheme.BackgroundHighlight(Removed, "- a"); got != "- a" {
		t.Errorf("plain theme must not style output, got %q", got)
	}
}
