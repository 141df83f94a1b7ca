package tree

import (
	"stylc/common"
)

// Flatten converts rule with already flattened children into the sequence of
// sibling rules CSS requires. Declarations and directives stay with a copy of
// the rule, nested rules follow it. When rule has no declarations it
// disappears leaving only nested rules. Nodes passed in are never modified.
//
// hasParentRule must be false only for rules without enclosing rule, for them
// the last produced rule is marked as the end of formatting group.
func Flatten(r *Rule, hasParentRule bool, style common.Style) []*Rule {
	var (
		body []Node
		kids []*Rule
	)
	for _, child := range r.Children {
		switch c := child.(type) {
		case *Declaration:
			body = append(body, c)
		case *Directive:
			body = append(body, c)
		case *Rule:
			kids = append(kids, c)
		}
	}

	out := make([]*Rule, 0, len(kids)+1)
	if len(body) > 0 {
		self := *r
		self.Children = body
		self.GroupEnd = false
		out = append(out, &self)
		for _, k := range kids {
			if style.IndentsNested() {
				c := *k
				c.Depth++
				k = &c
			}
			out = append(out, k)
		}
	} else {
		out = append(out, kids...)
	}

	if !hasParentRule && len(out) > 0 {
		last := *out[len(out)-1]
		last.GroupEnd = true
		out[len(out)-1] = &last
	}
	return out
}
