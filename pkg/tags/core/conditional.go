package core

import (
	"context"
	"errors"

	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/script"
)

// ErrWhenOutsideChoose is returned by when and otherwise without an enclosing choose.
var ErrWhenOutsideChoose = errors.New("must be nested in a choose tag")

// IfTag runs its body when test holds.
type IfTag struct {
	script.Support
	Test bool `attr:"test"`
}

func (t *IfTag) DoTag(ctx context.Context, out output.Output) error {
	if !t.Test {
		return nil
	}
	return t.InvokeBody(ctx, out)
}

// ChooseTag runs the first matching when, or otherwise.
type ChooseTag struct {
	script.Support
	matched bool
}

func (t *ChooseTag) DoTag(ctx context.Context, out output.Output) error {
	return t.InvokeBody(ctx, out)
}

// WhenTag is one branch of a choose.
type WhenTag struct {
	script.Support
	Test bool `attr:"test"`
}

func (t *WhenTag) DoTag(ctx context.Context, out output.Output) error {
	choose, ok := script.FindAncestor[*ChooseTag](t)
	if !ok {
		return ErrWhenOutsideChoose
	}
	if choose.matched || !t.Test {
		return nil
	}
	choose.matched = true
	return t.InvokeBody(ctx, out)
}

// OtherwiseTag is the fallback branch of a choose.
type OtherwiseTag struct {
	script.Support
}

func (t *OtherwiseTag) DoTag(ctx context.Context, out output.Output) error {
	choose, ok := script.FindAncestor[*ChooseTag](t)
	if !ok {
		return ErrWhenOutsideChoose
	}
	if choose.matched {
		return nil
	}
	choose.matched = true
	return t.InvokeBody(ctx, out)
}
