// Package script holds the executable representation of a compiled document and the
// driver that runs it.
//
// A document compiles once into a tree of Script nodes. Nodes are immutable after
// compilation and may run concurrently any number of times: every run of an Invocation
// creates a fresh Tag, and whitespace-normalized bodies are derived copies memoized on
// the node they came from.
package script

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/expression"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/scope"
)

// Script is an executable node.
type Script interface {
	Run(ctx context.Context, sc *scope.Scope, out output.Output) error
}

// Text is a literal payload.
type Text struct {
	Value string

	trimOnce sync.Once
	trimmed  Script
}

// NewText creates a literal node.
func NewText(value string) *Text {
	return &Text{Value: value}
}

func (t *Text) Run(ctx context.Context, sc *scope.Scope, out output.Output) error {
	return out.Write(t.Value)
}

// DynamicText is text with embedded expressions.
type DynamicText struct {
	Fragments []expression.Fragment

	trimOnce sync.Once
	trimmed  Script
}

// NewDynamicText creates a node from template fragments.
func NewDynamicText(frags ...expression.Fragment) *DynamicText {
	return &DynamicText{Fragments: frags}
}

// Evaluate renders the fragments against vars.
func (d *DynamicText) Evaluate(vars expression.Variables) (string, error) {
	var b strings.Builder
	for _, f := range d.Fragments {
		if f.IsLiteral() {
			b.WriteString(f.Literal)
			continue
		}
		v, err := f.Expr.Evaluate(vars)
		if err != nil {
			var exprErr *domain.ExpressionError
			if !errors.As(err, &exprErr) {
				err = &domain.ExpressionError{Expression: f.Expr.Source(), Err: err}
			}
			return "", err
		}
		b.WriteString(expression.ToString(v))
	}
	return b.String(), nil
}

func (d *DynamicText) Run(ctx context.Context, sc *scope.Scope, out output.Output) error {
	s, err := d.Evaluate(sc)
	if err != nil {
		return err
	}
	return out.Write(s)
}

// Sequence runs its children in order. The first failing child aborts the rest.
type Sequence struct {
	Children []Script

	textual  bool
	trimOnce sync.Once
	trimmed  Script
}

// NewSequence creates a sequence node.
func NewSequence(children ...Script) *Sequence {
	s := &Sequence{Children: children, textual: true}
	for _, c := range children {
		switch c.(type) {
		case *Text, *DynamicText:
		default:
			s.textual = false
		}
	}
	return s
}

// Textual reports whether every child is Text or DynamicText.
func (s *Sequence) Textual() bool {
	return s.textual
}

func (s *Sequence) Run(ctx context.Context, sc *scope.Scope, out output.Output) error {
	for _, c := range s.Children {
		if err := c.Run(ctx, sc, out); err != nil {
			return err
		}
	}
	return nil
}

// Empty returns a body that produces nothing.
func Empty() Script {
	return NewSequence()
}
