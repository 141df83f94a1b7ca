// Package render produces CSS text from resolved and flattened stylesheet
// tree.
package render

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"stylc/common"
	"stylc/tree"
)

// Renderer serializes nodes in one of the output styles.
type Renderer struct {
	style    common.Style
	diag     common.Diagnostics
	basePath string
	log      *zap.Logger
}

// New creates renderer. basePath is used to make file names in line
// comments relative, it may be empty.
func New(style common.Style, diag common.Diagnostics, basePath string, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{style: style, diag: diag, basePath: basePath, log: log.Named("render")}
}

// Style returns output style of the renderer.
func (r *Renderer) Style() common.Style {
	return r.style
}

// WithBasePath returns copy of the renderer using different base path.
func (r *Renderer) WithBasePath(basePath string) *Renderer {
	c := *r
	c.basePath = basePath
	return &c
}

// Stylesheet writes top level nodes to w, implementing the io.WriterTo
// convention for the returned count.
func (r *Renderer) Stylesheet(w io.Writer, nodes []tree.Node) (int64, error) {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(r.Node(1, n))
		if r.style != common.StyleCompressed {
			sb.WriteByte('\n')
		}
	}

	out := strings.TrimRight(sb.String(), " \t\r\n")
	if len(out) == 0 {
		return 0, nil
	}
	n, err := io.WriteString(w, out+"\n")
	return int64(n), err
}

// Node renders any node at given depth.
func (r *Renderer) Node(depth int, n tree.Node) string {
	switch n := n.(type) {
	case *tree.Rule:
		return r.Rule(depth, n)
	case *tree.Declaration:
		return r.Declaration(depth, n)
	case *tree.Directive:
		return r.Directive(depth, n)
	}
	return ""
}

// Declaration renders single property.
func (r *Renderer) Declaration(depth int, d *tree.Declaration) string {
	if r.style == common.StyleCompressed {
		return d.Name + ":" + d.Value
	}
	return indent(depth-1) + d.Name + ": " + d.Value + ";"
}

// Rule renders flattened rule, its children are expected to be declarations
// and directives only.
func (r *Renderer) Rule(depth int, rule *tree.Rule) string {
	depth += rule.Depth

	altSep := ", "
	if r.style == common.StyleCompressed {
		altSep = ","
	}
	lineSep := altSep
	oldSpaces := indent(depth - 1)
	perLine, total := "", oldSpaces
	if r.style.SplitsLines() {
		lineSep = ",\n"
		perLine, total = oldSpaces, ""
	}

	lines := make([]string, 0, len(rule.Resolved))
	for _, line := range rule.Resolved {
		lines = append(lines, perLine+strings.Join(line, altSep))
	}
	selectors := total + strings.Join(lines, lineSep)

	var sb strings.Builder
	if r.style != common.StyleCompressed {
		switch r.diag {
		case common.DiagnosticsComment:
			sb.WriteString(oldSpaces)
			sb.WriteString(r.lineComment(rule.Pos))
			sb.WriteByte('\n')
		case common.DiagnosticsStructured:
			sb.WriteString(r.debugInfo(rule.Pos))
			sb.WriteByte('\n')
		}
	}

	switch r.style {
	case common.StyleCompact:
		sb.WriteString(selectors)
		sb.WriteString(" { ")
		sb.WriteString(r.body(1, rule.Children, " "))
		sb.WriteString(" }")
	case common.StyleCompressed:
		sb.WriteString(selectors)
		sb.WriteByte('{')
		sb.WriteString(r.body(1, rule.Children, ";"))
		sb.WriteByte('}')
	default:
		sb.WriteString(selectors)
		sb.WriteString(" {\n")
		sb.WriteString(r.body(depth+1, rule.Children, "\n"))
		if r.style == common.StyleExpanded {
			sb.WriteString("\n" + oldSpaces)
		} else {
			sb.WriteByte(' ')
		}
		sb.WriteByte('}')
	}

	if rule.GroupEnd && r.style != common.StyleCompressed {
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Directive renders at-rule, rules inside of it are rendered one level
// deeper.
func (r *Renderer) Directive(depth int, d *tree.Directive) string {
	if !d.HasBlock() {
		return d.Name + ";"
	}
	if len(d.Children) == 0 {
		return d.Name + " {}"
	}

	var sb strings.Builder
	switch r.style {
	case common.StyleCompressed:
		sb.WriteString(d.Name + "{")
	case common.StyleCompact:
		sb.WriteString(indent(depth-1) + d.Name + " { ")
	default:
		sb.WriteString(indent(depth-1) + d.Name + " {\n")
	}

	wasDecl, first := false, true
	for _, child := range d.Children {
		_, isDecl := child.(*tree.Declaration)
		switch r.style {
		case common.StyleCompact:
			if isDecl {
				at := depth + 1
				if first || wasDecl {
					at = 1
				}
				sb.WriteString(r.Node(at, child) + " ")
				break
			}
			if wasDecl {
				// move nested block off the declarations line
				s := strings.TrimSuffix(sb.String(), " ")
				sb.Reset()
				sb.WriteString(s + "\n")
			}
			rendered := r.Node(depth+1, child)
			if first {
				rendered = strings.TrimLeft(rendered, " ")
			}
			sb.WriteString(strings.TrimRight(rendered, " \n") + "\n")
		case common.StyleCompressed:
			if wasDecl {
				sb.WriteByte(';')
			}
			sb.WriteString(r.Node(1, child))
		default:
			sb.WriteString(r.Node(depth+1, child) + "\n")
		}
		wasDecl, first = isDecl, false
	}

	out := strings.TrimRight(sb.String(), " \t\r\n")
	switch r.style {
	case common.StyleCompressed:
		return out + "}"
	case common.StyleExpanded:
		return out + "\n}\n"
	default:
		return out + " }\n"
	}
}

func (r *Renderer) body(depth int, children []tree.Node, sep string) string {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		if s := r.Node(depth, c); len(s) > 0 {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("  ", depth)
}
