// Package diffpreview renders diffmap updates for terminals.
package diffpreview

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

// Render prints one line per instruction, "+ path: value" for $set and
// "- path" for $unset, in bucket order with removals first.
func Render(u *diffmap.Update, theme Theme) string {
	var sb strings.Builder
	u.Unset.Range(func(path string, _ any) bool {
		sb.WriteString(theme.BackgroundHighlight(Removed, "- "+path) + "\n")
		return true
	})
	u.Set.Range(func(path string, value any) bool {
		sb.WriteString(theme.BackgroundHighlight(Added, "+ "+path+":") + " ")
		sb.WriteString(theme.SyntaxHighlight(diffmap.KindOf(value), formatScalar(value)) + "\n")
		return true
	})
	return sb.String()
}

// RenderTree renders a YAML-like view of the paths touched by u on top of
// base (which may be nil).
func RenderTree(base diffmap.Document, u *diffmap.Update, theme Theme) string {
	return RenderYAML(Annotate(base, u), theme, DefaultRenderOptions)
}

// RenderTreeWithOptions renders a YAML-like view with custom options
func RenderTreeWithOptions(base diffmap.Document, u *diffmap.Update, theme Theme, opts RenderOptions) string {
	return RenderYAML(Annotate(base, u), theme, opts)
}

// RenderStats returns a summary like "3 sets, 1,024 unsets".
func RenderStats(s diffmap.Stats) string {
	if s.Total() == 0 {
		return "no changes"
	}
	return fmt.Sprintf("%s %s, %s %s",
		humanize.Comma(int64(s.Sets)), english.PluralWord(s.Sets, "set", ""),
		humanize.Comma(int64(s.Unsets)), english.PluralWord(s.Unsets, "unset", ""))
}
