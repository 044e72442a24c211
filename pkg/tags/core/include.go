package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/script"
)

// MaxIncludeDepth bounds nested includes, which also stops include cycles.
const MaxIncludeDepth = 32

// ErrNoLoader is returned by include when the run has no way to load documents.
var ErrNoLoader = errors.New("include requires an engine loader")

// IncludeTag compiles and runs another document in place.
// The included document sees the enclosing variables and resolves relative
// references against its own location. Its exported bindings reach the includer
// unless export is false.
type IncludeTag struct {
	script.Support
	URI    string `attr:"uri"`
	Export bool   `attr:"export"`
}

func (t *IncludeTag) Validate() error {
	if t.URI == "" {
		return domain.MissingAttribute("uri")
	}
	return nil
}

func (t *IncludeTag) DoTag(ctx context.Context, out output.Output) error {
	depth := 0
	for _, name := range script.Frames(ctx) {
		if name == domain.Name(Namespace, "include") {
			depth++
		}
	}
	if depth > MaxIncludeDepth {
		return fmt.Errorf("include %q: nested more than %d levels", t.URI, MaxIncludeDepth)
	}

	exec := script.ExecutionFrom(ctx)
	if exec.Loader == nil {
		return ErrNoLoader
	}
	base := t.Scope().Base()
	s, err := exec.Loader.Load(ctx, t.URI, base)
	if err != nil {
		return fmt.Errorf("include %q: %w", t.URI, err)
	}

	sc := t.Scope()
	if !t.Export {
		sc = sc.NewExportBoundary()
	}
	return s.Run(ctx, sc.WithBase(ports.Join(base, t.URI)), out)
}
