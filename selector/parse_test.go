package selector_test

import (
	"reflect"
	"strings"
	"testing"

	"stylc/selector"
)

// joinLine rebuilds selector text from tokens of a comma free line.
func joinLine(line selector.Line) string {
	var sb strings.Builder
	for _, alt := range line {
		for _, t := range alt {
			sb.WriteString(t.Text())
		}
	}
	return sb.String()
}

func TestParseLine_RoundTrip(t *testing.T) {
	inputs := []string{
		"a",
		".foo .bar",
		"&.active",
		"& > li",
		"ul li:hover &",
		"a&b&c",
		"  spaced   out  ",
		"#main &:not(.x)",
		"",
	}
	for _, in := range inputs {
		line, continued := selector.ParseLine(in)
		if continued {
			t.Errorf("ParseLine(%q) reported continuation", in)
		}
		if len(line) != 1 {
			t.Fatalf("ParseLine(%q) returned %d alternatives, want 1", in, len(line))
		}
		if got := joinLine(line); got != in {
			t.Errorf("ParseLine(%q) round trip = %q", in, got)
		}
	}
}

func TestParseLine_Tokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want selector.Line
	}{
		{
			name: "plain",
			in:   "a",
			want: selector.Line{{selector.Literal{Value: "a"}}},
		},
		{
			name: "parent in the middle",
			in:   ".x&.y",
			want: selector.Line{{
				selector.Literal{Value: ".x"},
				selector.ParentMarker{},
				selector.Literal{Value: ".y"},
			}},
		},
		{
			name: "leading parent has no empty literal",
			in:   "&:hover",
			want: selector.Line{{selector.ParentMarker{}, selector.Literal{Value: ":hover"}}},
		},
		{
			name: "commas split and skip whitespace",
			in:   "a,   b,\tc",
			want: selector.Line{
				{selector.Literal{Value: "a"}},
				{selector.Literal{Value: "b"}},
				{selector.Literal{Value: "c"}},
			},
		},
		{
			name: "quoted comma is inert",
			in:   `a[title="x,y"], b`,
			want: selector.Line{
				{
					selector.Literal{Value: "a[title="},
					selector.QuotedSpan{Delim: '"', Content: "x,y", Closed: true},
					selector.Literal{Value: "]"},
				},
				{selector.Literal{Value: "b"}},
			},
		},
		{
			name: "quoted parent is inert",
			in:   `[data-x='&']`,
			want: selector.Line{{
				selector.Literal{Value: "[data-x="},
				selector.QuotedSpan{Delim: '\'', Content: "&", Closed: true},
				selector.Literal{Value: "]"},
			}},
		},
		{
			name: "escaped quote does not close span",
			in:   `[title="a\",b"]`,
			want: selector.Line{{
				selector.Literal{Value: "[title="},
				selector.QuotedSpan{Delim: '"', Content: `a\",b`, Closed: true},
				selector.Literal{Value: "]"},
			}},
		},
		{
			name: "other quote kind inside span",
			in:   `[title="it's, ok"]`,
			want: selector.Line{{
				selector.Literal{Value: "[title="},
				selector.QuotedSpan{Delim: '"', Content: "it's, ok", Closed: true},
				selector.Literal{Value: "]"},
			}},
		},
		{
			name: "unterminated span takes the rest",
			in:   `a[title="x, &y`,
			want: selector.Line{{
				selector.Literal{Value: "a[title="},
				selector.QuotedSpan{Delim: '"', Content: "x, &y"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, continued := selector.ParseLine(tt.in)
			if continued {
				t.Errorf("unexpected continuation")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine(%q)\n got: %#v\nwant: %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLine_TrailingComma(t *testing.T) {
	line, continued := selector.ParseLine("a, b,  ")
	if !continued {
		t.Fatal("expected continuation for trailing comma")
	}
	if len(line) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(line))
	}
	if line[1].String() != "b" {
		t.Errorf("expected second alternative 'b', got %q", line[1].String())
	}
}

func TestParseLine_UnterminatedKeepsText(t *testing.T) {
	in := `a[title='x\`
	line, _ := selector.ParseLine(in)
	if got := joinLine(line); got != in {
		t.Errorf("round trip = %q, want %q", got, in)
	}
}

func TestContinued(t *testing.T) {
	tests := map[string]bool{
		"a,":       true,
		"a, \t":    true,
		"a, b":     false,
		"a":        false,
		"":         false,
		`[x=","]`:  false,
		`[x=","],`: true,
	}
	for in, want := range tests {
		if got := selector.Continued(in); got != want {
			t.Errorf("Continued(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParse_KeepsLines(t *testing.T) {
	parsed := selector.Parse([]string{"a, b,", "c"})
	if len(parsed) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(parsed))
	}
	if len(parsed[0]) != 2 || len(parsed[1]) != 1 {
		t.Errorf("unexpected shape: %d, %d", len(parsed[0]), len(parsed[1]))
	}
	if parsed.HasParent() {
		t.Error("no parent reference expected")
	}
	if !selector.Parse([]string{"a", "&.b"}).HasParent() {
		t.Error("parent reference expected")
	}
}
