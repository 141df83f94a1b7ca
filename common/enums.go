// Package common keeps enumerations shared by configuration, command line
// and compiler packages. Kept separately so compiler packages do not depend
// on configuration.
package common

//go:generate go tool go-enum --marshal --names

// Output style of produced CSS.
// ENUM(nested, expanded, compact, compressed)
type Style int

// IndentsNested returns true when nested rules are indented deeper than
// their parents in produced output.
func (s Style) IndentsNested() bool {
	return s == StyleNested
}

// SplitsLines returns true when every selector line of a rule is put on a
// separate output line.
func (s Style) SplitsLines() bool {
	return s == StyleNested || s == StyleExpanded
}

// Kind of source location information attached to produced rules.
// ENUM(none, comment, structured)
type Diagnostics int
