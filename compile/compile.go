// Package compile turns nested stylesheet source into CSS: it parses source,
// resolves parent references top-down, flattens rules bottom-up and renders
// the result.
package compile

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stylc/common"
	"stylc/render"
	"stylc/selector"
	"stylc/source"
	"stylc/tree"
)

// Options control compilation.
type Options struct {
	Style       common.Style
	Diagnostics common.Diagnostics
	// BasePath makes file names in line comments relative, may be empty.
	BasePath string
	// Variables are visible to interpolation everywhere in the stylesheet.
	Variables map[string]string
	// Interpolator expands "#{...}", when nil text is used verbatim.
	Interpolator source.Interpolator
	// Trace, when set, receives tree after every compilation stage: "parse",
	// "resolve" and "flatten".
	Trace func(stage string, nodes []tree.Node)
}

// Compiler is safe for sequential reuse, it keeps no per-stylesheet state.
type Compiler struct {
	opts     Options
	parser   *source.Parser
	renderer *render.Renderer
	log      *zap.Logger
}

// New creates compiler.
func New(opts Options, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Interpolator == nil {
		opts.Interpolator = source.Verbatim{}
	}
	return &Compiler{
		opts:     opts,
		parser:   source.NewParser(log),
		renderer: render.New(opts.Style, opts.Diagnostics, opts.BasePath, log),
		log:      log.Named("compile"),
	}
}

// Options returns compiler options.
func (c *Compiler) Options() Options {
	return c.opts
}

// WithBasePath returns copy of the compiler using different base path for
// line comments.
func (c *Compiler) WithBasePath(basePath string) *Compiler {
	cc := *c
	cc.opts.BasePath = basePath
	cc.renderer = c.renderer.WithBasePath(basePath)
	return &cc
}

// Compile converts source text to CSS. filename is used for diagnostics and
// error positions only.
func (c *Compiler) Compile(data []byte, filename string) ([]byte, error) {
	start := time.Now()

	sheet, err := c.parser.Parse(data, filename)
	if err != nil {
		return nil, err
	}
	c.trace("parse", sheet.Children)
	nodes, err := c.Resolve(sheet)
	if err != nil {
		return nil, err
	}
	c.trace("resolve", nodes)
	flat := c.Flatten(nodes)
	c.trace("flatten", flat)

	var buf bytes.Buffer
	if _, err := c.renderer.Stylesheet(&buf, flat); err != nil {
		return nil, fmt.Errorf("unable to render %s: %w", filename, err)
	}

	c.log.Debug("Compiled",
		zap.String("file", filename),
		zap.Stringer("style", c.opts.Style),
		zap.Int("bytes", buf.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return buf.Bytes(), nil
}

// WithTrace returns copy of the compiler reporting intermediate trees to fn.
func (c *Compiler) WithTrace(fn func(stage string, nodes []tree.Node)) *Compiler {
	cc := *c
	cc.opts.Trace = fn
	return &cc
}

func (c *Compiler) trace(stage string, nodes []tree.Node) {
	if c.opts.Trace != nil {
		c.opts.Trace(stage, nodes)
	}
}

// Resolve interpolates and resolves selectors of every rule in the sheet,
// returning new tree. Sheet is not modified.
func (c *Compiler) Resolve(sheet *tree.Stylesheet) ([]tree.Node, error) {
	env := source.NewEnv(c.opts.Variables).With(sheet.Vars)
	return c.resolveNodes(sheet.Children, nil, env)
}

func (c *Compiler) resolveNodes(nodes []tree.Node, ancestor selector.ResolvedRule, env *source.Env) ([]tree.Node, error) {
	if nodes == nil {
		return nil, nil
	}
	out := make([]tree.Node, 0, len(nodes))
	for _, n := range nodes {
		r, err := c.resolveNode(n, ancestor, env)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Compiler) resolveNode(n tree.Node, ancestor selector.ResolvedRule, env *source.Env) (tree.Node, error) {
	switch n := n.(type) {
	case *tree.Rule:
		rule := n.Clone()

		// selector is evaluated in the enclosing scope
		lines := make([]string, 0, len(n.Selector))
		for _, raw := range n.Selector {
			line, err := c.opts.Interpolator.Interpolate(raw, env)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", n.Pos, err)
			}
			lines = append(lines, line)
		}
		rule.Parsed = selector.Parse(lines)

		var err error
		if rule.Resolved, err = selector.Resolve(rule.Parsed, ancestor); err != nil {
			return nil, fmt.Errorf("%s: %w", n.Pos, err)
		}
		if rule.Children, err = c.resolveNodes(n.Children, rule.Resolved, env.With(n.Vars)); err != nil {
			return nil, err
		}
		return rule, nil

	case *tree.Declaration:
		value, err := c.opts.Interpolator.Interpolate(n.Value, env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Pos, err)
		}
		d := *n
		d.Value = value
		return &d, nil

	case *tree.Directive:
		d := n.Clone()
		name, err := c.opts.Interpolator.Interpolate(n.Name, env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Pos, err)
		}
		d.Name = name
		// rules inside directive start without parent
		if d.Children, err = c.resolveNodes(n.Children, nil, env.With(n.Vars)); err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("unexpected node %T", n)
}

// Flatten moves nested rules out of their parents, bottom-up. Resulting
// slice is what renderer expects on the top level.
func (c *Compiler) Flatten(nodes []tree.Node) []tree.Node {
	return c.flattenNodes(nodes, false)
}

func (c *Compiler) flattenNodes(nodes []tree.Node, hasParentRule bool) []tree.Node {
	if nodes == nil {
		return nil
	}
	out := make([]tree.Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *tree.Rule:
			rule := n.Clone()
			rule.Children = c.flattenNodes(n.Children, true)
			for _, f := range tree.Flatten(rule, hasParentRule, c.opts.Style) {
				out = append(out, f)
			}
		case *tree.Directive:
			d := n.Clone()
			d.Children = c.flattenNodes(n.Children, false)
			out = append(out, d)
		case *tree.Declaration:
			out = append(out, n)
		}
	}
	return out
}
