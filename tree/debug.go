package tree

import (
	"strconv"

	"stylc/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns a readable tree of the parsed stylesheet. It exists solely
// for manual inspection during debugging.
func (s *Stylesheet) String() string {
	if s == nil {
		return "<nil Stylesheet>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Stylesheet file=%q", s.File)
	tw.vars(1, s.Vars)
	tw.nodes(1, s.Children)
	return tw.String()
}

// Dump returns a readable tree of nodes at any compilation stage.
func Dump(nodes []Node) string {
	tw := treeWriter{debug.NewTreeWriter()}
	tw.nodes(0, nodes)
	return tw.String()
}

func (tw treeWriter) nodes(depth int, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Rule:
			tw.rule(depth, n)
		case *Declaration:
			tw.Line(depth, "Declaration %s", n.Pos)
			tw.TextBlock(depth+1, n.Name, n.Value)
		case *Directive:
			tw.directive(depth, n)
		}
	}
}

func (tw treeWriter) rule(depth int, r *Rule) {
	tw.Line(depth, "Rule %s depth=%d groupEnd=%t", r.Pos, r.Depth, r.GroupEnd)
	tw.List(depth+1, "Selector", r.Selector)
	for i, line := range r.Resolved {
		tw.List(depth+1, "Resolved["+strconv.Itoa(i)+"]", line)
	}
	tw.vars(depth+1, r.Vars)
	tw.nodes(depth+1, r.Children)
}

func (tw treeWriter) directive(depth int, d *Directive) {
	if !d.HasBlock() {
		tw.Line(depth, "Directive %s", d.Pos)
		tw.TextBlock(depth+1, "Name", d.Name)
		return
	}
	tw.Line(depth, "Directive %s block=%d", d.Pos, len(d.Children))
	tw.TextBlock(depth+1, "Name", d.Name)
	tw.vars(depth+1, d.Vars)
	tw.nodes(depth+1, d.Children)
}

func (tw treeWriter) vars(depth int, vars []Var) {
	for _, v := range vars {
		tw.TextBlock(depth, "$"+v.Name, v.Value)
	}
}
