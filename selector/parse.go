package selector

import (
	"strings"
)

// Parse tokenizes every raw selector line of a rule.
func Parse(lines []string) ParsedRule {
	parsed := make(ParsedRule, 0, len(lines))
	for _, l := range lines {
		line, _ := ParseLine(l)
		parsed = append(parsed, line)
	}
	return parsed
}

// ParseLine scans a single selector line splitting it on commas which are not
// quoted. When line ends with a comma continued is true: caller is expected
// to supply the rest of the selector on the next line.
func ParseLine(text string) (line Line, continued bool) {
	var (
		alt Alternative
		lit strings.Builder
	)

	flush := func() {
		if lit.Len() > 0 {
			alt = append(alt, Literal{Value: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		switch c := text[i]; c {
		case Parent:
			flush()
			alt = append(alt, ParentMarker{})
			i++
		case ',':
			flush()
			line = append(line, mergeLiterals(alt))
			alt = nil
			for i++; i < len(text) && isSpace(text[i]); i++ {
			}
			if i == len(text) {
				return line, true
			}
		case '"', '\'':
			flush()
			span, n := scanQuoted(text[i:])
			alt = append(alt, span)
			i += n
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return append(line, mergeLiterals(alt)), false
}

// Continued reports whether raw selector line ends with a comma and so
// expects continuation on the next line.
func Continued(text string) bool {
	_, continued := ParseLine(text)
	return continued
}

// scanQuoted consumes quoted span at the beginning of s. Backslash escapes
// next character, so escaped quote does not terminate the span. Unterminated
// span takes the rest of the input.
func scanQuoted(s string) (QuotedSpan, int) {
	span := QuotedSpan{Delim: s[0]}
	i := 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case span.Delim:
			span.Content, span.Closed = s[1:i], true
			return span, i + 1
		}
		i++
	}
	span.Content = s[1:]
	return span, len(s)
}

// mergeLiterals joins adjacent literals and drops empty ones.
func mergeLiterals(alt Alternative) Alternative {
	out := make(Alternative, 0, len(alt))
	for _, t := range alt {
		l, ok := t.(Literal)
		if !ok {
			out = append(out, t)
			continue
		}
		if l.Value == "" {
			continue
		}
		if n := len(out); n > 0 {
			if prev, ok := out[n-1].(Literal); ok {
				out[n-1] = Literal{Value: prev.Value + l.Value}
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
