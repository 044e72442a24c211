package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/tendril/internal/presentation/tui"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/output"
)

// RunOptions select how a run is written.
type RunOptions struct {
	// JSON writes NDJSON output events.
	JSON bool
	// Render formats the text output as markdown in the terminal.
	Render bool
	// Style is the glamour style used with Render; empty detects it.
	Style string
}

// Execute runs the script id once and writes its output to w.
func Execute(ctx context.Context, p *Project, id string, opts RunOptions, w io.Writer) error {
	vars := p.VarsFor(ctx, id)

	switch {
	case opts.JSON:
		return p.Engine.RunResource(ctx, id, vars, output.NewJSONWriter(w))
	case opts.Render:
		render, err := tui.NewRenderer(opts.Style)
		if err != nil {
			return err
		}
		var b strings.Builder
		if err := p.Engine.RunResource(ctx, id, vars, output.NewTextWriter(&b)); err != nil {
			return err
		}
		rendered, err := render(b.String())
		if err != nil {
			return fmt.Errorf("failed to render output: %w", err)
		}
		_, err = io.WriteString(w, rendered)
		return err
	default:
		if err := p.Engine.RunResource(ctx, id, vars, output.NewXMLWriter(w, p.Config.ShouldEscape())); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
}

// Describe formats err for the terminal, adding the tag trace when there is one.
func Describe(err error) string {
	if trace, ok := domain.TraceOf(err); ok {
		return fmt.Sprintf("%v\n  in %s", err, trace)
	}
	return err.Error()
}
