// Package source reads stylesheet text into the tree the compiler works on.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"stylc/selector"
	"stylc/tree"
)

// SyntaxError describes malformed input.
type SyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if len(e.File) == 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Parser builds stylesheet trees from text.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("source")}
}

// Parse decodes data and builds stylesheet tree. filename is only used for
// positions, it is never opened.
func (p *Parser) Parse(data []byte, filename string) (*tree.Stylesheet, error) {
	src, enc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if len(enc) > 0 {
		p.log.Debug("Stylesheet decoded", zap.String("file", filename), zap.String("charset", enc))
	}

	toks, err := lex(src)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to tokenize: %w", filename, err)
	}

	s := &scanner{toks: toks, src: src, file: filename, log: p.log}
	sheet := &tree.Stylesheet{File: filename}
	if sheet.Children, sheet.Vars, err = s.block(true, token{}); err != nil {
		return nil, err
	}
	p.log.Debug("Stylesheet parsed", zap.String("file", filename), zap.Int("tokens", len(toks)), zap.Int("nodes", len(sheet.Children)))
	return sheet, nil
}

type token struct {
	tt     css.TokenType
	data   string
	line   int
	offset int
}

func (t token) is(tt css.TokenType, data string) bool {
	return t.tt == tt && t.data == data
}

// lex splits src into tokens dropping comments, both "/* */" and "//" up to
// the end of line.
func lex(src []byte) ([]token, error) {
	var (
		toks        []token
		line        = 1
		offset      int
		lineComment bool
	)

	l := css.NewLexer(parse.NewInputBytes(src))
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			return toks, nil
		}

		t := token{tt: tt, data: string(data), line: line, offset: offset}
		line += strings.Count(t.data, "\n")
		offset += len(data)

		switch {
		case lineComment:
			if tt == css.WhitespaceToken && strings.ContainsAny(t.data, "\n\r\f") {
				lineComment = false
				toks = append(toks, t)
			}
		case tt == css.CommentToken, tt == css.CDOToken, tt == css.CDCToken:
		case t.is(css.DelimToken, "/") && len(toks) > 0 && toks[len(toks)-1].is(css.DelimToken, "/") && toks[len(toks)-1].offset+1 == t.offset:
			toks = toks[:len(toks)-1]
			lineComment = true
		default:
			toks = append(toks, t)
		}
	}
}

type terminator int

const (
	termEOF terminator = iota
	termSemicolon
	termOpen
	termClose
)

type scanner struct {
	toks []token
	pos  int
	src  []byte
	file string
	log  *zap.Logger
}

func (s *scanner) errorAt(t token, format string, args ...any) error {
	line, col, _ := parse.Position(bytes.NewReader(s.src), t.offset)
	return &SyntaxError{File: s.file, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) eof() token {
	t := token{offset: len(s.src), line: 1}
	if n := len(s.toks); n > 0 {
		last := s.toks[n-1]
		t.line = last.line + strings.Count(last.data, "\n")
	}
	return t
}

// statement collects tokens up to the next terminator. Braces of "#{...}"
// are part of the statement.
func (s *scanner) statement() ([]token, token, terminator) {
	var (
		stmt           []token
		parens, interp int
	)
	for s.pos < len(s.toks) {
		t := s.toks[s.pos]
		s.pos++

		switch t.tt {
		case css.LeftBraceToken:
			if n := len(stmt); n > 0 && stmt[n-1].is(css.DelimToken, "#") && stmt[n-1].offset+1 == t.offset {
				interp++
				stmt = append(stmt, t)
				continue
			}
			return stmt, t, termOpen
		case css.RightBraceToken:
			if interp > 0 {
				interp--
				stmt = append(stmt, t)
				continue
			}
			return stmt, t, termClose
		case css.SemicolonToken:
			if interp == 0 && parens == 0 {
				return stmt, t, termSemicolon
			}
		case css.LeftParenthesisToken, css.LeftBracketToken, css.FunctionToken:
			parens++
		case css.RightParenthesisToken, css.RightBracketToken:
			if parens > 0 {
				parens--
			}
		}
		stmt = append(stmt, t)
	}
	return stmt, s.eof(), termEOF
}

// block parses statements until matching closing brace, or end of input for
// the root block.
func (s *scanner) block(root bool, open token) ([]tree.Node, []tree.Var, error) {
	var (
		nodes = []tree.Node{}
		vars  []tree.Var
	)
	add := func(stmt []token) error {
		n, v, err := s.simple(stmt, root)
		if err != nil {
			return err
		}
		if v != nil {
			vars = append(vars, *v)
		}
		if n != nil {
			nodes = append(nodes, n)
		}
		return nil
	}

	for {
		stmt, end, term := s.statement()
		stmt = trim(stmt)

		switch term {
		case termEOF:
			if !root {
				return nil, nil, s.errorAt(open, "unclosed block")
			}
			if len(stmt) > 0 {
				if err := add(stmt); err != nil {
					return nil, nil, err
				}
			}
			return nodes, vars, nil
		case termClose:
			if root {
				return nil, nil, s.errorAt(end, `unexpected "}"`)
			}
			if len(stmt) > 0 {
				if err := add(stmt); err != nil {
					return nil, nil, err
				}
			}
			return nodes, vars, nil
		case termSemicolon:
			if len(stmt) > 0 {
				if err := add(stmt); err != nil {
					return nil, nil, err
				}
			}
		case termOpen:
			if len(stmt) == 0 {
				return nil, nil, s.errorAt(end, "missing selector")
			}
			n, err := s.nested(stmt, end)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, n)
		}
	}
}

// simple handles statement terminated with semicolon: variable, declaration
// or directive without block.
func (s *scanner) simple(stmt []token, root bool) (tree.Node, *tree.Var, error) {
	first := stmt[0]
	pos := tree.Pos{File: s.file, Line: first.line}

	if first.tt == css.AtKeywordToken {
		if root && strings.EqualFold(first.data, "@charset") {
			s.log.Debug("Dropping @charset, output is always UTF-8", zap.Stringer("at", pos))
			return nil, nil, nil
		}
		return &tree.Directive{Pos: pos, Name: text(stmt, false)}, nil, nil
	}

	colon := -1
	for i, t := range stmt {
		if t.tt == css.ColonToken {
			colon = i
			break
		}
	}

	if first.is(css.DelimToken, "$") {
		if len(stmt) < 2 || stmt[1].tt != css.IdentToken || stmt[1].offset != first.offset+1 || colon < 2 || len(trim(stmt[2:colon])) > 0 {
			return nil, nil, s.errorAt(first, "malformed variable definition %q", text(stmt, false))
		}
		value := trim(stmt[colon+1:])
		if len(value) == 1 && value[0].tt == css.StringToken {
			return nil, &tree.Var{Name: stmt[1].data, Value: unquote(value[0].data)}, nil
		}
		return nil, &tree.Var{Name: stmt[1].data, Value: text(value, false)}, nil
	}

	if colon < 0 {
		return nil, nil, s.errorAt(first, "expected declaration, got %q", text(stmt, false))
	}
	name, value := text(trim(stmt[:colon]), false), text(trim(stmt[colon+1:]), false)
	if len(name) == 0 {
		return nil, nil, s.errorAt(first, "declaration without property name")
	}
	if root {
		return nil, nil, s.errorAt(first, "declaration %q outside of any rule", name)
	}
	if len(value) == 0 {
		s.log.Warn("Skipping declaration without value", zap.String("property", name), zap.Stringer("at", pos))
		return nil, nil, nil
	}
	return &tree.Declaration{Pos: pos, Name: name, Value: value}, nil, nil
}

// nested handles statement followed by block: rule or directive.
func (s *scanner) nested(stmt []token, open token) (tree.Node, error) {
	first := stmt[0]
	pos := tree.Pos{File: s.file, Line: first.line}

	children, vars, err := s.block(false, open)
	if err != nil {
		return nil, err
	}

	if first.tt == css.AtKeywordToken {
		return &tree.Directive{Pos: pos, Name: text(stmt, false), Children: children, Vars: vars}, nil
	}
	rule := &tree.Rule{Pos: pos, Children: children, Vars: vars}
	rule.AddLines(selectorLines(text(stmt, true))...)
	return rule, nil
}

// selectorLines breaks selector text into lines. Line break is only kept
// after trailing comma, otherwise lines are joined with a space.
func selectorLines(text string) []string {
	var lines []string
	for l := range strings.SplitSeq(text, "\n") {
		l = strings.TrimSpace(l)
		if len(l) == 0 {
			continue
		}
		if n := len(lines); n > 0 && !selector.Continued(lines[n-1]) {
			lines[n-1] += " " + l
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func trim(stmt []token) []token {
	for len(stmt) > 0 && stmt[0].tt == css.WhitespaceToken {
		stmt = stmt[1:]
	}
	for len(stmt) > 0 && stmt[len(stmt)-1].tt == css.WhitespaceToken {
		stmt = stmt[:len(stmt)-1]
	}
	return stmt
}

// text joins tokens collapsing whitespace runs to a single space, or to a new
// line when lines is set and run has one.
func text(stmt []token, lines bool) string {
	var (
		sb strings.Builder
		ws string
	)
	for _, t := range stmt {
		if t.tt == css.WhitespaceToken {
			if lines && strings.ContainsAny(t.data, "\n\r\f") {
				ws = "\n"
			} else if len(ws) == 0 {
				ws = " "
			}
			continue
		}
		if len(ws) > 0 && sb.Len() > 0 {
			sb.WriteString(ws)
		}
		ws = ""
		sb.WriteString(t.data)
	}
	return sb.String()
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
