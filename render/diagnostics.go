package render

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"stylc/common"
	"stylc/selector"
	"stylc/tree"
)

// debugInfoMedia is recognized by browser extensions which map generated
// rules back to the source.
const debugInfoMedia = "@media -sass-debug-info"

// lineComment returns "/* line N, file */" for the position.
func (r *Renderer) lineComment(pos tree.Pos) string {
	var sb strings.Builder
	sb.WriteString("/* line ")
	sb.WriteString(strconv.Itoa(pos.Line))
	if len(pos.File) > 0 {
		sb.WriteString(", ")
		sb.WriteString(r.relativeName(pos.File))
	}
	sb.WriteString(" */")
	return sb.String()
}

// relativeName makes file name relative to base path, on any failure
// original name is returned.
func (r *Renderer) relativeName(name string) string {
	if len(r.basePath) == 0 {
		return name
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		r.log.Debug("Unable to make path absolute", zap.String("file", name), zap.Error(err))
		return name
	}
	base, err := filepath.Abs(r.basePath)
	if err != nil {
		r.log.Debug("Unable to make path absolute", zap.String("base", r.basePath), zap.Error(err))
		return name
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		r.log.Debug("Unable to make path relative", zap.String("file", name), zap.String("base", r.basePath), zap.Error(err))
		return name
	}
	return filepath.ToSlash(rel)
}

// debugInfo renders source position as a synthetic compressed media block,
// for example:
//
//	@media -sass-debug-info{filename{font-family:file\:\/\/\/a\.scss}line{font-family:\000031}}
func (r *Renderer) debugInfo(pos tree.Pos) string {
	return New(common.StyleCompressed, common.DiagnosticsNone, "", r.log).Directive(1, DebugInfo(pos))
}

// DebugInfo builds directive tree carrying source position of a rule.
// Entries are sorted by name, filename is omitted when unknown.
func DebugInfo(pos tree.Pos) *tree.Directive {
	entry := func(name, value string) *tree.Rule {
		return &tree.Rule{
			Resolved: selector.ResolvedRule{{name}},
			Children: []tree.Node{&tree.Declaration{Name: "font-family", Value: EscapeIdent(value)}},
		}
	}

	d := &tree.Directive{Name: debugInfoMedia, Children: []tree.Node{}}
	if len(pos.File) > 0 {
		d.Children = append(d.Children, entry("filename", fileURI(pos.File)))
	}
	d.Children = append(d.Children, entry("line", strconv.Itoa(pos.Line)))
	return d
}

func fileURI(name string) string {
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	p := filepath.ToSlash(name)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// EscapeIdent escapes string so it could be used as CSS identifier. Leading
// character which cannot start identifier is hex escaped, any other
// character outside of [a-zA-Z0-9_-] is escaped with backslash.
func EscapeIdent(s string) string {
	if len(s) == 0 {
		return ""
	}
	if s == "-" || s == "_" {
		return `\` + s
	}

	var sb strings.Builder
	if s[0] == '-' || s[0] == '_' {
		sb.WriteByte(s[0])
		s = s[1:]
	}
	if len(s) > 0 {
		c, size := utf8.DecodeRuneInString(s)
		if isNameStart(c) {
			sb.WriteRune(c)
		} else {
			sb.WriteString(escapeChar(c))
		}
		s = s[size:]
	}
	for _, c := range s {
		if isNameChar(c) {
			sb.WriteRune(c)
			continue
		}
		sb.WriteString(escapeChar(c))
	}
	return sb.String()
}

func escapeChar(c rune) string {
	if (c >= ' ' && c <= '/') || (c >= ':' && c <= '~') {
		return `\` + string(c)
	}
	return fmt.Sprintf(`\%06x`, c)
}

func isNameStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isNameChar(c rune) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
