package diffpreview

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

type RenderOptions struct {
	IndentSize                int
	EnableBackgroundHighlight bool
}

var DefaultRenderOptions = RenderOptions{
	IndentSize:                2,
	EnableBackgroundHighlight: true,
}

func RenderYAML(node *AnnotatedNode, theme Theme, opts RenderOptions) string {
	var sb strings.Builder
	renderNode(&sb, node, theme, opts, 0)
	return sb.String()
}

func renderNode(sb *strings.Builder, node *AnnotatedNode, theme Theme, opts RenderOptions, indent int) {
	space := strings.Repeat(" ", indent*opts.IndentSize)

	if node.Children == nil {
		renderValue(sb, node, theme, opts, indent)
		return
	}
	for _, key := range sortKeys(node.Children) {
		child := node.Children[key]

		keyStr := theme.KeyStyle.Render(key) + ":"
		if opts.EnableBackgroundHighlight && child.Children == nil {
			keyStr = theme.BackgroundHighlight(child.Change, keyStr)
		}
		sb.WriteString(space + keyStr)

		if child.Children == nil {
			renderValue(sb, child, theme, opts, indent)
		} else {
			sb.WriteString("\n")
			renderNode(sb, child, theme, opts, indent+1)
		}
	}
}

func renderValue(sb *strings.Builder, node *AnnotatedNode, theme Theme, opts RenderOptions, indent int) {
	switch kind := diffmap.KindOf(node.Value); kind {
	case diffmap.KindObject:
		sb.WriteString("\n")
		renderInlineMap(sb, node.Value, theme, opts, indent+1)
	case diffmap.KindArray:
		sb.WriteString("\n")
		renderInlineList(sb, node.Value, theme, opts, indent+1)
	default:
		content := theme.SyntaxHighlight(kind, formatScalar(node.Value))
		if opts.EnableBackgroundHighlight {
			content = theme.BackgroundHighlight(node.Change, content)
		}
		sb.WriteString(" " + content + "\n")
	}
}

func renderInlineMap(sb *strings.Builder, v any, theme Theme, opts RenderOptions, indent int) {
	space := strings.Repeat(" ", indent*opts.IndentSize)

	m := toDocument(v)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(space + theme.KeyStyle.Render(k) + ":")
		renderInline(sb, m[k], theme, opts, indent)
	}
}

func renderInlineList(sb *strings.Builder, v any, theme Theme, opts RenderOptions, indent int) {
	space := strings.Repeat(" ", indent*opts.IndentSize)
	list, _ := diffmap.Clone(v).([]any)
	for _, item := range list {
		sb.WriteString(space + "-")
		renderInline(sb, item, theme, opts, indent)
	}
}

func renderInline(sb *strings.Builder, v any, theme Theme, opts RenderOptions, indent int) {
	switch kind := diffmap.KindOf(v); kind {
	case diffmap.KindObject:
		sb.WriteString("\n")
		renderInlineMap(sb, v, theme, opts, indent+1)
	case diffmap.KindArray:
		sb.WriteString("\n")
		renderInlineList(sb, v, theme, opts, indent+1)
	default:
		sb.WriteString(" " + theme.SyntaxHighlight(kind, formatScalar(v)) + "\n")
	}
}

func toDocument(v any) diffmap.Document {
	doc, _ := diffmap.Clone(v).(diffmap.Document)
	return doc
}

// formatScalar prints leaf values the way they would appear in YAML.
// Documents and arrays are printed in flow style.
func formatScalar(v any) string {
	switch diffmap.KindOf(v) {
	case diffmap.KindNull:
		return "null"
	case diffmap.KindString:
		return strconv.Quote(reflect.Indirect(reflect.ValueOf(v)).String())
	case diffmap.KindDate:
		if t, ok := v.(time.Time); ok {
			return t.Format(time.RFC3339Nano)
		}
	case diffmap.KindBinary:
		if b, ok := v.([]byte); ok {
			return "!!binary " + base64.StdEncoding.EncodeToString(b)
		}
	case diffmap.KindObject:
		doc := toDocument(v)
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + formatScalar(doc[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case diffmap.KindArray:
		list, _ := diffmap.Clone(v).([]any)
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = formatScalar(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%v", v)
}
