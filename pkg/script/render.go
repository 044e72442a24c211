package script

import (
	"context"
	"strings"

	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/scope"
)

// RenderText runs s against sc and returns what it wrote, markup included and unescaped.
// Purely textual nodes are rendered without a sink.
func RenderText(ctx context.Context, s Script, sc *scope.Scope) (string, error) {
	if s == nil {
		return "", nil
	}
	if text, ok, err := textOf(s, sc); ok || err != nil {
		return text, err
	}
	return output.Render(false, func(out output.Output) error {
		return s.Run(ctx, sc, out)
	})
}

func textOf(s Script, sc *scope.Scope) (string, bool, error) {
	switch n := s.(type) {
	case *Text:
		return n.Value, true, nil
	case *DynamicText:
		text, err := n.Evaluate(sc)
		return text, true, err
	case *Sequence:
		if !n.Textual() {
			return "", false, nil
		}
		var b strings.Builder
		for _, c := range n.Children {
			text, _, err := textOf(c, sc)
			if err != nil {
				return "", true, err
			}
			b.WriteString(text)
		}
		return b.String(), true, nil
	default:
		return "", false, nil
	}
}
