package compiler_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/tendril/internal/compiler"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/scope"
	"github.com/aretw0/tendril/pkg/script"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) script.Script {
	t.Helper()
	s, err := compiler.NewParser().Parse(strings.NewReader(src), "doc.xml")
	require.NoError(t, err)
	return s
}

func TestParse_Structure(t *testing.T) {
	src := `<root xmlns:c="urn:core">
  <c:set var="x" value="${1 + 1}"/>
  <p class="a">Hello, ${name}!</p>
</root>`

	s := parse(t, src)
	root, ok := s.(*script.Invocation)
	require.True(t, ok)
	assert.Equal(t, domain.Name("", "root"), root.Name)
	assert.Empty(t, root.Attributes, "namespace declarations are not attributes")
	assert.Equal(t, 1, root.Location.Line)

	seq, ok := root.Body.(*script.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Children, 5)

	set := seq.Children[1].(*script.Invocation)
	assert.Equal(t, domain.Name("urn:core", "set"), set.Name)
	assert.Equal(t, 2, set.Location.Line)
	require.Len(t, set.Attributes, 2)
	assert.Equal(t, "var", set.Attributes[0].Name)
	assert.Equal(t, "value", set.Attributes[1].Name)

	p := seq.Children[3].(*script.Invocation)
	_, dynamic := p.Body.(*script.DynamicText)
	assert.True(t, dynamic, "single text child collapses into the body")
}

func TestParse_RoundTripPlainMarkup(t *testing.T) {
	s := parse(t, `<doc><a href="x">link</a> &amp; <b/></doc>`)

	rec := output.NewRecorder()
	ctx := script.WithExecution(context.Background(), &script.Execution{})
	require.NoError(t, s.Run(ctx, scope.New(), rec))

	got, err := rec.Document()
	require.NoError(t, err)

	want := &output.Node{Children: []*output.Node{{
		Name: domain.Name("", "doc"),
		Children: []*output.Node{
			{
				Name:     domain.Name("", "a"),
				Attrs:    []output.Attr{{Name: domain.Name("", "href"), Value: "x"}},
				Children: []*output.Node{{Text: "link"}},
			},
			{Text: "&"},
			{Name: domain.Name("", "b")},
		},
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"Unclosed", "<a>\n<b>\n</a>", 3},
		{"Empty", "   ", 1},
		{"Bad Expression", "<a>\n\n${1 +}</a>", 3},
		{"Bad Attribute", "<a x=\"${\"/>", 1},
		{"Two Roots", "<a/><b/>", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.NewParser().Parse(strings.NewReader(tt.src), "bad.xml")
			var parseErr *domain.ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, "bad.xml", parseErr.Source)
			assert.Equal(t, tt.line, parseErr.Line)
		})
	}
}
