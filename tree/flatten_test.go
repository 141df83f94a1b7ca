package tree_test

import (
	"testing"

	"stylc/common"
	"stylc/tree"
)

func decl(name, value string) *tree.Declaration {
	return &tree.Declaration{Name: name, Value: value}
}

func rule(sel string, children ...tree.Node) *tree.Rule {
	return &tree.Rule{Selector: []string{sel}, Children: children}
}

// flattenAll flattens bottom-up the way compiler does it.
func flattenAll(r *tree.Rule, hasParentRule bool, style common.Style) []*tree.Rule {
	c := r.Clone()
	c.Children = c.Children[:0]
	for _, child := range r.Children {
		if kid, ok := child.(*tree.Rule); ok {
			for _, f := range flattenAll(kid, true, style) {
				c.Children = append(c.Children, f)
			}
			continue
		}
		c.Children = append(c.Children, child)
	}
	return tree.Flatten(c, hasParentRule, style)
}

func selectors(rules []*tree.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Selector[0])
	}
	return out
}

func TestFlatten_Order(t *testing.T) {
	root := rule("a",
		decl("color", "red"),
		rule("b", decl("x", "1"), rule("c", decl("y", "2"))),
		decl("margin", "0"),
		rule("d", decl("z", "3")),
	)

	got := flattenAll(root, false, common.StyleExpanded)
	want := []string{"a", "b", "c", "d"}
	if s := selectors(got); len(s) != len(want) {
		t.Fatalf("got %v, want %v", s, want)
	}
	for i, s := range selectors(got) {
		if s != want[i] {
			t.Errorf("rule %d = %q, want %q", i, s, want[i])
		}
	}

	if n := len(got[0].Children); n != 2 {
		t.Fatalf("retained rule has %d children, want 2", n)
	}
	for _, c := range got[0].Children {
		if _, ok := c.(*tree.Declaration); !ok {
			t.Errorf("retained rule holds %T, want only declarations", c)
		}
	}
}

func TestFlatten_DropsEmptyRule(t *testing.T) {
	root := rule("a", rule("b", decl("x", "1")), rule("c", decl("y", "2")))
	got := flattenAll(root, false, common.StyleNested)
	if s := selectors(got); len(s) != 2 || s[0] != "b" || s[1] != "c" {
		t.Fatalf("got %v, want [b c]", s)
	}
	// without declarations in "a" children were not indented
	for _, r := range got {
		if r.Depth != 0 {
			t.Errorf("%q depth = %d, want 0", r.Selector[0], r.Depth)
		}
	}
}

func TestFlatten_EmptyTreeYieldsNothing(t *testing.T) {
	if got := flattenAll(rule("a", rule("b")), false, common.StyleNested); len(got) != 0 {
		t.Errorf("expected no rules, got %v", selectors(got))
	}
}

func TestFlatten_DirectiveStaysInBody(t *testing.T) {
	media := &tree.Directive{Name: "@media print", Children: []tree.Node{}}
	got := flattenAll(rule("a", media), false, common.StyleNested)
	if len(got) != 1 || len(got[0].Children) != 1 || got[0].Children[0] != media {
		t.Fatalf("directive must stay in the rule body")
	}
}

func TestFlatten_NestedDepth(t *testing.T) {
	root := rule("a",
		decl("x", "1"),
		rule("b", decl("y", "2"), rule("c", decl("z", "3"))),
	)

	tests := []struct {
		style common.Style
		want  []int
	}{
		{common.StyleNested, []int{0, 1, 2}},
		{common.StyleExpanded, []int{0, 0, 0}},
		{common.StyleCompact, []int{0, 0, 0}},
		{common.StyleCompressed, []int{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			got := flattenAll(root, false, tt.style)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d rules, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Depth != tt.want[i] {
					t.Errorf("%q depth = %d, want %d", r.Selector[0], r.Depth, tt.want[i])
				}
			}
		})
	}
}

func TestFlatten_GroupEnd(t *testing.T) {
	root := rule("a",
		decl("x", "1"),
		rule("b", decl("y", "2"), rule("c", decl("z", "3"))),
		rule("d", decl("w", "4")),
	)

	got := flattenAll(root, false, common.StyleNested)
	for i, r := range got {
		want := i == len(got)-1
		if r.GroupEnd != want {
			t.Errorf("%q GroupEnd = %v, want %v", r.Selector[0], r.GroupEnd, want)
		}
	}

	nested := flattenAll(root, true, common.StyleNested)
	for _, r := range nested {
		if r.GroupEnd {
			t.Errorf("%q marked as group end under parent rule", r.Selector[0])
		}
	}
}

func TestFlatten_DoesNotModifyInput(t *testing.T) {
	kid := &tree.Rule{Selector: []string{"b"}, Children: []tree.Node{decl("y", "2")}}
	root := &tree.Rule{Selector: []string{"a"}, Children: []tree.Node{decl("x", "1"), kid}}

	got := tree.Flatten(root, false, common.StyleNested)
	if len(got) != 2 {
		t.Fatalf("got %d rules, want 2", len(got))
	}
	if kid.Depth != 0 || kid.GroupEnd {
		t.Errorf("child was modified: depth %d, group end %v", kid.Depth, kid.GroupEnd)
	}
	if len(root.Children) != 2 || root.GroupEnd {
		t.Errorf("root was modified")
	}
	if got[1].Depth != 1 || !got[1].GroupEnd {
		t.Errorf("unexpected flattened child: depth %d, group end %v", got[1].Depth, got[1].GroupEnd)
	}
}

func TestRule_AddLines(t *testing.T) {
	r := &tree.Rule{}
	if r.Continued() {
		t.Error("empty rule cannot be continued")
	}
	r.AddLines("a,")
	if !r.Continued() {
		t.Error("expected continuation after trailing comma")
	}
	r.AddLines("b")
	if r.Continued() || len(r.Selector) != 2 {
		t.Errorf("unexpected state: %q", r.Selector)
	}
}
