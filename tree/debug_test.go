package tree_test

import (
	"testing"

	"stylc/selector"
	"stylc/tree"
)

func TestDump(t *testing.T) {
	nodes := []tree.Node{
		&tree.Rule{
			Pos:      tree.Pos{File: "a.scss", Line: 1},
			Selector: []string{"a,", "b"},
			Resolved: selector.ResolvedRule{{"a"}, {"b"}},
			Vars:     []tree.Var{{Name: "c", Value: "red"}},
			Children: []tree.Node{
				&tree.Declaration{Pos: tree.Pos{File: "a.scss", Line: 3}, Name: "color", Value: "red"},
			},
			GroupEnd: true,
		},
		&tree.Directive{Pos: tree.Pos{File: "a.scss", Line: 5}, Name: "@import \"x\""},
		&tree.Directive{Pos: tree.Pos{File: "a.scss", Line: 6}, Name: "@media print", Children: []tree.Node{}},
	}

	want := `Rule a.scss:1 depth=0 groupEnd=true
  Selector: ["a,", "b"]
  Resolved[0]: ["a"]
  Resolved[1]: ["b"]
  $c: "red"
  Declaration a.scss:3
    color: "red"
Directive a.scss:5
  Name: "@import \"x\""
Directive a.scss:6 block=0
  Name: "@media print"
`
	if got := tree.Dump(nodes); got != want {
		t.Errorf("Dump() mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestStylesheet_String(t *testing.T) {
	var nilSheet *tree.Stylesheet
	if got := nilSheet.String(); got != "<nil Stylesheet>" {
		t.Errorf("nil String() = %q", got)
	}

	sheet := &tree.Stylesheet{
		File:     "main.scss",
		Vars:     []tree.Var{{Name: "w", Value: "1px"}},
		Children: []tree.Node{&tree.Rule{Pos: tree.Pos{Line: 2}, Selector: []string{"p"}}},
	}
	want := "Stylesheet file=\"main.scss\"\n  $w: \"1px\"\n  Rule line 2 depth=0 groupEnd=false\n    Selector: [\"p\"]\n"
	if got := sheet.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
