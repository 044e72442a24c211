package cli

import (
	"context"
	"errors"
	"fmt"
)

// Validate compiles every id (all listed scripts when ids is empty) and returns
// the joined compilation errors. Nothing is executed.
func Validate(ctx context.Context, p *Project, ids []string) (int, error) {
	if len(ids) == 0 {
		listed, err := p.Engine.List(ctx)
		if err != nil {
			return 0, err
		}
		ids = listed
	}

	var errs []error
	for _, id := range ids {
		if _, err := p.Engine.CompileResource(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		p.Logger.Debug("Script is valid", "script", id)
	}
	return len(ids), errors.Join(errs...)
}
