// Package selector turns raw selector lines into structured tokens and
// resolves parent references against already resolved ancestor selectors.
package selector

import (
	"errors"
	"strings"
)

// Parent is the character used in source selectors to reference the
// enclosing rule's selector.
const Parent = '&'

// ErrUnboundParentReference is returned when a selector uses the parent
// reference but there is no enclosing rule to take it from.
var ErrUnboundParentReference = errors.New("base-level rules cannot contain the parent-selector-referencing character '&'")

// Token is a single piece of a selector alternative. Implemented by Literal,
// ParentMarker and QuotedSpan only.
type Token interface {
	// Text returns source text of the token.
	Text() string
	isToken()
}

// Literal is a run of plain selector text.
type Literal struct {
	Value string
}

// ParentMarker stands for the resolved selector of the enclosing rule.
type ParentMarker struct{}

// QuotedSpan is a quoted string kept verbatim. Commas and parent markers
// inside of it have no special meaning.
type QuotedSpan struct {
	Delim   byte   // opening quote character
	Content string // everything between the quotes, escapes untouched
	Closed  bool   // false when input ended before closing quote
}

func (Literal) isToken()      {}
func (ParentMarker) isToken() {}
func (QuotedSpan) isToken()   {}

func (t Literal) Text() string { return t.Value }

func (ParentMarker) Text() string { return string(Parent) }

func (t QuotedSpan) Text() string {
	var sb strings.Builder
	sb.Grow(len(t.Content) + 2)
	sb.WriteByte(t.Delim)
	sb.WriteString(t.Content)
	if t.Closed {
		sb.WriteByte(t.Delim)
	}
	return sb.String()
}

// Alternative is one of the comma separated selectors of a line.
type Alternative []Token

// HasParent reports whether alternative references parent selector.
func (a Alternative) HasParent() bool {
	for _, t := range a {
		if _, ok := t.(ParentMarker); ok {
			return true
		}
	}
	return false
}

// String returns alternative source text, parent markers included.
func (a Alternative) String() string {
	var sb strings.Builder
	for _, t := range a {
		sb.WriteString(t.Text())
	}
	return sb.String()
}

// Line is a single source line of a rule selector.
type Line []Alternative

// ParsedRule is a tokenized selector of a rule, one Line per source line.
type ParsedRule []Line

// HasParent reports whether any alternative of the rule references parent
// selector.
func (p ParsedRule) HasParent() bool {
	for _, line := range p {
		for _, alt := range line {
			if alt.HasParent() {
				return true
			}
		}
	}
	return false
}

// ResolvedRule has the same shape as ParsedRule, but every alternative is
// flattened to a string with all parent references substituted.
type ResolvedRule [][]string

// Count returns total number of alternatives in all lines.
func (r ResolvedRule) Count() int {
	var n int
	for _, line := range r {
		n += len(line)
	}
	return n
}
