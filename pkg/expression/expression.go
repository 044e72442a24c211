// Package expression adapts github.com/expr-lang/expr to the engine.
//
// Expressions are compiled once, when a script is compiled, and evaluated against a
// variables snapshot on every run. Text with ${...} placeholders is split into
// fragments by ParseTemplate.
package expression

import (
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Variables exposes the bindings an expression is evaluated against.
type Variables interface {
	Variables() map[string]any
}

// Map adapts a plain map to Variables.
type Map map[string]any

func (m Map) Variables() map[string]any { return m }

// Expression is a compiled, reusable expression. Implementations are immutable and
// safe for concurrent evaluation.
type Expression interface {
	Evaluate(vars Variables) (any, error)
	Source() string
}

// Constant is an expression whose value is fixed at compile time.
type Constant struct {
	Value any
	Text  string
}

func (c Constant) Evaluate(Variables) (any, error) { return c.Value, nil }

func (c Constant) Source() string { return c.Text }

type program struct {
	source  string
	program *vm.Program
}

// Compile compiles src. Undefined variables evaluate to nil.
func Compile(src string) (Expression, error) {
	p, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, &domain.ExpressionError{Expression: src, Err: err}
	}
	return &program{source: src, program: p}, nil
}

func (p *program) Evaluate(vars Variables) (any, error) {
	env := map[string]any{}
	if vars != nil {
		if m := vars.Variables(); m != nil {
			env = m
		}
	}
	v, err := expr.Run(p.program, env)
	if err != nil {
		return nil, &domain.ExpressionError{Expression: p.source, Err: err}
	}
	return v, nil
}

func (p *program) Source() string { return p.source }
