package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "rule", nil, "rule\n"},
		{"depth 1", 1, "declaration", nil, "  declaration\n"},
		{"depth 2", 2, "nested", nil, "    nested\n"},
		{"with formatting", 1, "depth=%d", []any{42}, "  depth=42\n"},
		{"multiple args", 0, "%s line %d", []any{"a.scss", 5}, "a.scss line 5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{"empty value", 0, "value", "", "value: \n"},
		{"plain value", 0, "value", "red", "value: \"red\"\n"},
		{"indented", 2, "value", "1px solid", "    value: \"1px solid\"\n"},
		{"quotes", 0, "value", `"x"`, "value: \"\\\"x\\\"\"\n"},
		{"newline", 0, "selector", "a,\nb", "selector: \"a,\\nb\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_List(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"empty", nil, "  lines: []\n"},
		{"single", []string{"a b"}, "  lines: [\"a b\"]\n"},
		{"several", []string{"a,", `b[x="1"]`}, "  lines: [\"a,\", \"b[x=\\\"1\\\"]\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.List(1, "lines", tt.values)
			if got := tw.String(); got != tt.want {
				t.Errorf("List() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_MultipleOperations(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "Stylesheet")
	tw.Line(1, "Rule")
	tw.List(2, "selector", []string{"a"})
	tw.TextBlock(2, "color", "red")
	tw.Line(1, "Directive")

	want := "Stylesheet\n  Rule\n    selector: [\"a\"]\n    color: \"red\"\n  Directive\n"
	if got := tw.String(); got != want {
		t.Errorf("Multiple operations:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"red", `"red"`},
		{"col1\tcol2", `"col1\tcol2"`},
		{`url(a\b)`, `"url(a\\b)"`},
	}
	for _, tt := range tests {
		if got := encodeText(tt.input); got != tt.want {
			t.Errorf("encodeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
