// Package tree defines stylesheet nodes and flattening of nested rules.
package tree

import (
	"fmt"

	"stylc/selector"
)

// Pos is a location in the source.
type Pos struct {
	File string
	Line int // 1-based, 0 when unknown
}

// Position returns the position itself, it makes Pos embeddable.
func (p Pos) Position() Pos {
	return p
}

func (p Pos) String() string {
	switch {
	case p.File != "" && p.Line > 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	case p.Line > 0:
		return fmt.Sprintf("line %d", p.Line)
	default:
		return p.File
	}
}

// Node is an element of stylesheet tree. Implemented by *Rule, *Declaration
// and *Directive only.
type Node interface {
	Position() Pos
	node()
}

// Var is interpolation variable defined in a block with "$name: value;".
type Var struct {
	Name  string
	Value string
}

// Rule is a selector block. Selector holds raw source lines, Parsed and
// Resolved are filled in during compilation, Depth and GroupEnd during
// flattening.
type Rule struct {
	Pos
	Selector []string
	Parsed   selector.ParsedRule
	Resolved selector.ResolvedRule
	Children []Node
	Vars     []Var
	Depth    int
	GroupEnd bool
}

// Declaration is a single "name: value" property.
type Declaration struct {
	Pos
	Name  string
	Value string
}

// Directive is an at-rule. Name has full header, for example "@media print".
// Nil Children means directive has no block and is terminated by semicolon.
type Directive struct {
	Pos
	Name     string
	Children []Node
	Vars     []Var
}

func (*Rule) node()        {}
func (*Declaration) node() {}
func (*Directive) node()   {}

// Stylesheet is a root of the tree.
type Stylesheet struct {
	File     string
	Children []Node
	Vars     []Var
}

// AddLines appends raw selector lines to the rule.
func (r *Rule) AddLines(lines ...string) {
	r.Selector = append(r.Selector, lines...)
}

// Continued reports whether last selector line ends with a comma.
func (r *Rule) Continued() bool {
	if len(r.Selector) == 0 {
		return false
	}
	return selector.Continued(r.Selector[len(r.Selector)-1])
}

// Clone returns shallow copy of the rule. Children slice is copied, nodes
// are shared.
func (r *Rule) Clone() *Rule {
	c := *r
	c.Children = cloneNodes(r.Children)
	return &c
}

// HasBlock reports whether directive has a body.
func (d *Directive) HasBlock() bool {
	return d.Children != nil
}

// Clone returns shallow copy of the directive preserving absence of block.
func (d *Directive) Clone() *Directive {
	c := *d
	c.Children = cloneNodes(d.Children)
	return &c
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
