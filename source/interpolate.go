package source

import (
	"bytes"
	"fmt"
	"maps"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"stylc/tree"
)

const (
	interpOpen  = "#{"
	interpClose = "}"
)

// Env is a chain of variable scopes, inner scopes shadow outer ones.
type Env struct {
	parent *Env
	vars   map[string]string
}

// NewEnv creates outermost scope, vars are copied.
func NewEnv(vars map[string]string) *Env {
	return &Env{vars: maps.Clone(vars)}
}

// With returns scope nested in e holding vars, e itself is returned when
// there is nothing to add.
func (e *Env) With(vars []tree.Var) *Env {
	if len(vars) == 0 {
		return e
	}
	scope := &Env{parent: e, vars: make(map[string]string, len(vars))}
	for _, v := range vars {
		scope.vars[v.Name] = v.Value
	}
	return scope
}

// Lookup finds variable in the nearest scope defining it.
func (e *Env) Lookup(name string) (string, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return "", false
}

// Map returns all visible variables.
func (e *Env) Map() map[string]string {
	if e == nil {
		return map[string]string{}
	}
	out := e.parent.Map()
	maps.Copy(out, e.vars)
	return out
}

// Interpolator expands "#{...}" sequences in raw text.
type Interpolator interface {
	Interpolate(raw string, env *Env) (string, error)
}

// TemplateInterpolator treats "#{...}" as text/template actions with slim-sprig
// functions available, for example "#{ .theme | upper }". Variables not
// defined in any scope expand to empty string.
type TemplateInterpolator struct {
	funcs template.FuncMap
	log   *zap.Logger
}

// NewTemplateInterpolator creates interpolator.
func NewTemplateInterpolator(log *zap.Logger) *TemplateInterpolator {
	if log == nil {
		log = zap.NewNop()
	}
	return &TemplateInterpolator{funcs: sprig.FuncMap(), log: log.Named("interpolate")}
}

// Interpolate expands raw using variables visible in env.
func (ti *TemplateInterpolator) Interpolate(raw string, env *Env) (string, error) {
	if !strings.Contains(raw, interpOpen) {
		return raw, nil
	}

	tmpl, err := template.New("interpolation").
		Delims(interpOpen, interpClose).
		Option("missingkey=zero").
		Funcs(ti.funcs).
		Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unable to parse interpolation %q: %w", raw, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, env.Map()); err != nil {
		return "", fmt.Errorf("unable to expand interpolation %q: %w", raw, err)
	}
	ti.log.Debug("Interpolated", zap.String("raw", raw), zap.String("result", buf.String()))
	return buf.String(), nil
}

// Verbatim is interpolator leaving text as is.
type Verbatim struct{}

// Interpolate returns raw unchanged.
func (Verbatim) Interpolate(raw string, _ *Env) (string, error) {
	return raw, nil
}
