package xml_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/tags/xml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc, err := xml.Parse(strings.NewReader(`<list kind="x"><item>a</item><item>b &amp; c</item></list>`))
	require.NoError(t, err)

	lists := doc.Elements("list")
	require.Len(t, lists, 1)
	kind, ok := lists[0].Attr("kind")
	assert.True(t, ok)
	assert.Equal(t, "x", kind)

	items := lists[0].Elements("item")
	require.Len(t, items, 2)
	assert.Equal(t, "b & c", items[1].Content())
}

func TestParse_Malformed(t *testing.T) {
	_, err := xml.Parse(strings.NewReader(`<a><b></a>`))
	assert.Error(t, err)
}

func TestParseAndPrint(t *testing.T) {
	res := memory.NewResources(map[string]string{
		"data/feed.xml": `<feed><entry id="1">first</entry><entry id="2">second</entry></feed>`,
		"page.xml": `<page xmlns:x="tendril:xml" xmlns:c="tendril:core">
  <x:parse var="doc" uri="data/feed.xml"/>
  <c:forEach items="${doc.Elements('feed')[0].Elements('entry')}" var="e"><x:print value="${e}"/></c:forEach>
</page>`,
		"inline.xml": `<page xmlns:x="tendril:xml"><x:parse var="doc"><a>${who}</a></x:parse><x:print value="${doc}"/></page>`,
		"novar.xml":  `<x:parse xmlns:x="tendril:xml"><a/></x:parse>`,
	})
	engine := tendril.New(tendril.WithResources(res))
	ctx := context.Background()

	t.Run("From Resource", func(t *testing.T) {
		html, err := engine.Render(ctx, "page.xml", nil)
		require.NoError(t, err)
		assert.Equal(t, `<page><entry id="1">first</entry><entry id="2">second</entry></page>`, html)
	})

	t.Run("From Body", func(t *testing.T) {
		html, err := engine.Render(ctx, "inline.xml", map[string]any{"who": "Ada"})
		require.NoError(t, err)
		assert.Equal(t, `<page><a>Ada</a></page>`, html)
	})

	t.Run("Missing Var", func(t *testing.T) {
		_, err := engine.Render(ctx, "novar.xml", nil)
		var missing *domain.MissingAttributeError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "var", missing.Attribute)
	})
}
