// Package script compiles designer-authored transition conditions. A
// condition is a tengo expression over a fixed set of named variables, e.g.
//
//	move > 0 && !run_held
package script

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/rs/zerolog"
)

var ErrEmptyExpression = errors.New("script: empty expression")

const resultVar = "__result"

// Vars maps variable names to their current values. Supported value types are
// those tengo converts natively: bool, int, float64, string.
type Vars map[string]any

// Predicate is a compiled condition. It is not safe for concurrent use; each
// machine compiles its own.
type Predicate struct {
	expr     string
	compiled *tengo.Compiled
	names    []string
}

// Compile builds expr against the variables declared in decl. Every variable
// the expression refers to must be declared; the declared values only fix
// the types used for compilation.
func Compile(expr string, decl Vars) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyExpression
	}

	src := fmt.Sprintf("%s := bool(%s)", resultVar, expr)
	s := tengo.NewScript([]byte(src))
	s.SetImports(stdlib.GetModuleMap("math"))

	names := make([]string, 0, len(decl))
	for name, v := range decl {
		if err := s.Add(name, v); err != nil {
			return nil, fmt.Errorf("script: declare %s: %w", name, err)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %q: %w", expr, err)
	}
	return &Predicate{expr: expr, compiled: compiled, names: names}, nil
}

// Expr returns the source expression.
func (p *Predicate) Expr() string {
	return p.expr
}

// Eval runs the expression with vars bound. Variables missing from vars keep
// the value of the previous evaluation. A VM panic, such as an integer
// division by zero, is returned as an error.
func (p *Predicate) Eval(vars Vars) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("script: run %q: %v", p.expr, r)
		}
	}()

	for _, name := range p.names {
		v, ok := vars[name]
		if !ok {
			continue
		}
		if err := p.compiled.Set(name, v); err != nil {
			return false, fmt.Errorf("script: set %s: %w", name, err)
		}
	}
	if err := p.compiled.Run(); err != nil {
		return false, fmt.Errorf("script: run %q: %w", p.expr, err)
	}
	return p.compiled.Get(resultVar).Bool(), nil
}

// Func adapts the predicate to a plain condition. env is called on every
// evaluation; runtime errors are logged and read as false.
func (p *Predicate) Func(env func() Vars, log *zerolog.Logger) func() bool {
	return func() bool {
		ok, err := p.Eval(env())
		if err != nil {
			if log != nil {
				log.Error().Err(err).Str("expr", p.expr).Msg("transition condition failed")
			}
			return false
		}
		return ok
	}
}
