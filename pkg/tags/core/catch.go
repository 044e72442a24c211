package core

import (
	"context"
	"errors"

	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/script"
)

// CatchTag runs its body and suppresses any failure. When var is set, the error
// message is bound in the enclosing scope. Cancellation is never suppressed.
type CatchTag struct {
	script.Support
	Var string `attr:"var"`
}

func (t *CatchTag) DoTag(ctx context.Context, out output.Output) error {
	err := t.InvokeBody(ctx, out)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	script.ExecutionFrom(ctx).Log().Debug("Caught tag failure", "error", err)
	if t.Var != "" {
		t.Scope().SetLocal(t.Var, err.Error())
	}
	return nil
}
