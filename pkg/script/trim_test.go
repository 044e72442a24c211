package script_test

import (
	"context"
	"testing"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/scope"
	"github.com/aretw0/tendril/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, s script.Script, vars map[string]any) string {
	t.Helper()
	got, err := script.RenderText(context.Background(), s, scope.New(scope.WithVariables(vars)))
	require.NoError(t, err)
	return got
}

func TestTrim(t *testing.T) {
	vars := map[string]any{"name": "Ada"}
	element := &script.Invocation{Name: domain.Name("", "br")}

	tests := []struct {
		name string
		in   func(t *testing.T) script.Script
		want string
	}{
		{
			name: "Single Text",
			in:   func(t *testing.T) script.Script { return script.NewText("  hi  ") },
			want: "hi",
		},
		{
			name: "Sequence Of One Text",
			in:   func(t *testing.T) script.Script { return script.NewSequence(script.NewText("  hi  ")) },
			want: "hi",
		},
		{
			name: "Single Dynamic Text",
			in:   func(t *testing.T) script.Script { return dynamic(t, "  Hello, ${name}!  ") },
			want: "Hello, Ada!",
		},
		{
			name: "Dynamic Sequence Keeps Interior",
			in: func(t *testing.T) script.Script {
				return script.NewSequence(
					script.NewText("  a  "),
					dynamic(t, " ${name} "),
					script.NewText("  b  "),
				)
			},
			want: "a   Ada   b",
		},
		{
			name: "Plain Sequence Drops Blank Text",
			in: func(t *testing.T) script.Script {
				return script.NewSequence(
					script.NewText("\n  "),
					element,
					script.NewText("  x  "),
					element,
					script.NewText("\n"),
				)
			},
			want: "<br/>x<br/>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in(t)
			before := render(t, in, vars)

			once := script.Trim(in)
			assert.Equal(t, tt.want, render(t, once, vars))
			assert.Equal(t, tt.want, render(t, script.Trim(once), vars), "trim must be idempotent")
			assert.Same(t, once, script.Trim(in), "trim must be memoized")
			assert.Equal(t, before, render(t, in, vars), "trim must not alter its input")
		})
	}
}

func TestRenderText_FastPathAndMarkup(t *testing.T) {
	assert.True(t, script.NewSequence(script.NewText("a"), dynamic(t, "${1}")).Textual())

	mixed := script.NewSequence(
		script.NewText("a<"),
		&script.Invocation{Name: domain.Name("", "b"), Body: script.NewText("c")},
	)
	assert.False(t, mixed.Textual())
	assert.Equal(t, "a<<b>c</b>", render(t, mixed, nil))
}
