package diffpreview

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/loog-project/diffy/pkg/diffy"
)

type RenderOptions struct {
	IndentSize                int
	EnableBackgroundHighlight bool
	// EnableMarkers prefixes every line with a +/-/~ gutter.
	EnableMarkers bool
	// HideUnchanged skips keys the patch does not touch.
	HideUnchanged bool
}

var DefaultRenderOptions = RenderOptions{
	IndentSize:                2,
	EnableBackgroundHighlight: true,
	EnableMarkers:             true,
}

func RenderYAML(node *AnnotatedNode, theme Theme, opts RenderOptions) string {
	r := &renderer{theme: theme, opts: opts}
	r.renderRoot(node)
	return r.sb.String()
}

type renderer struct {
	sb    strings.Builder
	theme Theme
	opts  RenderOptions
}

func (r *renderer) renderRoot(node *AnnotatedNode) {
	if node.Old != nil {
		r.renderReplaced("", node, 0)
		return
	}
	if !node.IsHash() {
		r.line(node.Change, 0, r.formatValue(node.Value))
		return
	}
	if len(node.Children) == 0 {
		r.line(node.Change, 0, "{}")
		return
	}
	r.renderChildren(node, 0)
}

func (r *renderer) renderChildren(node *AnnotatedNode, indent int) {
	for _, key := range slices.Sorted(maps.Keys(node.Children)) {
		child := node.Children[key]
		if r.opts.HideUnchanged && child.Change == Unchanged {
			continue
		}
		if child.Old != nil {
			r.renderReplaced(key, child, indent)
			continue
		}
		r.renderEntry(key, child, child.Change, indent)
	}
}

// renderReplaced renders the old value as removed and the new one as added.
func (r *renderer) renderReplaced(key string, node *AnnotatedNode, indent int) {
	r.renderEntry(key, buildRemovedNode(node.Old), Removed, indent)
	replacement := *node
	replacement.Old = nil
	r.renderEntry(key, &replacement, Added, indent)
}

func (r *renderer) renderEntry(key string, node *AnnotatedNode, change ChangeType, indent int) {
	prefix := ""
	if key != "" {
		prefix = r.theme.SyntaxHighlight("key", key) + ":"
	}
	switch {
	case !node.IsHash():
		r.line(change, indent, joinNonEmpty(prefix, r.formatValue(node.Value)))
	case len(node.Children) == 0:
		r.line(change, indent, joinNonEmpty(prefix, "{}"))
	default:
		if prefix != "" {
			r.line(change, indent, prefix)
			indent++
		}
		r.renderChildren(node, indent)
	}
}

func (r *renderer) line(change ChangeType, indent int, content string) {
	if r.opts.EnableMarkers {
		r.sb.WriteString(r.theme.Marker(change))
	}
	r.sb.WriteString(strings.Repeat(" ", indent*r.opts.IndentSize))
	if r.opts.EnableBackgroundHighlight {
		content = r.theme.BackgroundHighlight(change, content)
	}
	r.sb.WriteString(content)
	r.sb.WriteByte('\n')
}

func (r *renderer) formatValue(v diffy.Value) string {
	switch val := v.(type) {
	case diffy.String:
		return r.theme.SyntaxHighlight("string", strconv.Quote(string(val)))
	case diffy.Number:
		return r.theme.SyntaxHighlight("number", strconv.FormatFloat(float64(val), 'f', -1, 64))
	case diffy.Bool:
		return r.theme.SyntaxHighlight("bool", strconv.FormatBool(bool(val)))
	case diffy.Null:
		return r.theme.SyntaxHighlight("null", "null")
	case nil:
		return r.theme.SyntaxHighlight("null", "~")
	default:
		return "{}"
	}
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
