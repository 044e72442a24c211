package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/expression"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/scope"
)

// AttributeExpr is a declared attribute and its compiled value.
type AttributeExpr struct {
	Name string
	Expr expression.Expression
}

// Invocation is an element bound to a tag at run time.
type Invocation struct {
	Name       domain.QName
	Attributes []AttributeExpr
	Body       Script
	Location   domain.Location
}

// Run resolves the tag, configures a fresh instance and executes it.
func (inv *Invocation) Run(ctx context.Context, sc *scope.Scope, out output.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exec := ExecutionFrom(ctx)

	tag, err := inv.newTag(ctx, exec)
	if err != nil {
		return err
	}

	tag.SetParent(CurrentTag(ctx))
	ctx = withFrame(ctx, tag, inv.Name)
	body := inv.Body
	if body == nil {
		body = Empty()
	}
	tag.SetBody(body)
	if err := tag.SetScope(sc); err != nil {
		return inv.fail(ctx, err)
	}
	if err := inv.configure(tag, sc); err != nil {
		return inv.fail(ctx, err)
	}

	if v, ok := tag.(Validator); ok {
		if err := v.Validate(); err != nil {
			return inv.fail(ctx, err)
		}
	}

	depth := currentFrame(ctx).depth
	start := time.Now()
	if exec.Hooks.OnTagStart != nil {
		exec.Hooks.OnTagStart(ctx, &domain.TagEvent{
			Timestamp: start,
			Type:      domain.EventTagStart,
			Tag:       inv.Name,
			Location:  inv.Location,
			Depth:     depth,
		})
	}

	err = tag.DoTag(ctx, out)

	if exec.Hooks.OnTagEnd != nil {
		exec.Hooks.OnTagEnd(ctx, &domain.TagEvent{
			Timestamp: time.Now(),
			Type:      domain.EventTagEnd,
			Tag:       inv.Name,
			Location:  inv.Location,
			Depth:     depth,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	if err != nil {
		return inv.fail(ctx, err)
	}
	return nil
}

func (inv *Invocation) newTag(ctx context.Context, exec *Execution) (Tag, error) {
	if exec.Resolver != nil {
		if factory, ok := exec.Resolver.Resolve(inv.Name); ok {
			if tag := factory(); tag != nil {
				return tag, nil
			}
		}
	}

	if inv.Name.Namespace != "" {
		if exec.Strict {
			return nil, &domain.UnresolvedTagError{
				Tag:      inv.Name,
				Location: inv.Location,
				Stack:    append([]domain.QName{inv.Name}, Frames(ctx)...),
			}
		}
		exec.Log().Warn("No tag library provides tag, emitting it as markup",
			"tag", inv.Name.String(), "location", inv.Location.String())
		if exec.Hooks.OnUnresolved != nil {
			exec.Hooks.OnUnresolved(ctx, &domain.TagEvent{
				Timestamp: time.Now(),
				Type:      domain.EventUnresolved,
				Tag:       inv.Name,
				Location:  inv.Location,
				Depth:     len(Frames(ctx)),
			})
		}
	}
	return NewStaticTag(inv.Name), nil
}

// configure evaluates the attributes in declaration order and assigns them.
func (inv *Invocation) configure(tag Tag, sc *scope.Scope) error {
	if len(inv.Attributes) == 0 {
		return nil
	}
	vars := expression.Map(sc.Variables())
	for _, a := range inv.Attributes {
		value, err := a.Expr.Evaluate(vars)
		if err != nil {
			var exprErr *domain.ExpressionError
			if !errors.As(err, &exprErr) {
				err = &domain.ExpressionError{Expression: a.Expr.Source(), Err: err}
			}
			return &domain.AttributeError{Tag: inv.Name, Attribute: a.Name, Err: err}
		}
		if err := assign(tag, a.Name, value); err != nil {
			return &domain.AttributeError{Tag: inv.Name, Attribute: a.Name, Err: err}
		}
	}
	return nil
}

// fail attributes err to this invocation. Errors already attributed to a tag pass
// through so the innermost failure keeps its stack; they only get one when they
// have none yet.
func (inv *Invocation) fail(ctx context.Context, err error) error {
	var (
		missing    *domain.MissingAttributeError
		attrErr    *domain.AttributeError
		unresolved *domain.UnresolvedTagError
		tagErr     *domain.TagError
	)
	switch {
	case errors.As(err, &missing):
		if missing.Tag.Local == "" {
			missing.Tag = inv.Name
		}
		if missing.Stack == nil {
			missing.Stack = Frames(ctx)
		}
		return err
	case errors.As(err, &attrErr):
		if attrErr.Stack == nil {
			attrErr.Stack = Frames(ctx)
		}
		return err
	case errors.As(err, &unresolved):
		if unresolved.Stack == nil {
			unresolved.Stack = Frames(ctx)
		}
		return err
	case errors.As(err, &tagErr):
		return err
	}

	ExecutionFrom(ctx).Log().Debug("Tag failed",
		"tag", inv.Name.String(), "location", inv.Location.String(), "error", err)
	return &domain.TagError{
		Tag:      inv.Name,
		Location: inv.Location,
		Stack:    Frames(ctx),
		Err:      err,
	}
}

func (inv *Invocation) String() string {
	return fmt.Sprintf("<%s> at %s", inv.Name, inv.Location)
}
