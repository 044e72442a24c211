package tendril_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite() *memory.Resources {
	return memory.NewResources(map[string]string{
		"pages/index.xml":      `<html xmlns:c="tendril:core"><c:include uri="parts/head.xml"/><body>${title}</body></html>`,
		"pages/parts/head.xml": `<head><title>${title}</title></head>`,
		"broken.xml":           `<p xmlns:c="tendril:core"><c:forEach items="${1}" var="x"/></p>`,
		"unknown.xml":          `<p xmlns:z="urn:nowhere"><z:thing/></p>`,
	})
}

func TestFacade_RenderWithInclude(t *testing.T) {
	engine := tendril.New(tendril.WithResources(newSite()))

	html, err := engine.Render(context.Background(), "pages/index.xml", map[string]any{"title": "T & U"})
	require.NoError(t, err)
	assert.Equal(t, `<html><head><title>T &amp; U</title></head><body>T &amp; U</body></html>`, html)
}

func TestFacade_DocumentBracket(t *testing.T) {
	engine := tendril.New()
	s, err := engine.CompileString(`<a>x</a>`, "inline")
	require.NoError(t, err)

	rec := output.NewRecorder()
	require.NoError(t, engine.Run(context.Background(), s, nil, rec))
	require.NotEmpty(t, rec.Events)
	assert.Equal(t, output.KindStartDocument, rec.Events[0].Kind)
	assert.Equal(t, output.KindEndDocument, rec.Events[len(rec.Events)-1].Kind)
}

func TestFacade_CompileCache(t *testing.T) {
	res := newSite()
	engine := tendril.New(tendril.WithResources(res))
	ctx := context.Background()

	first, err := engine.CompileResource(ctx, "pages/index.xml")
	require.NoError(t, err)
	second, err := engine.CompileResource(ctx, "./pages/index.xml")
	require.NoError(t, err)
	assert.Same(t, first, second)

	engine.Invalidate("pages/index.xml")
	third, err := engine.CompileResource(ctx, "pages/index.xml")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestFacade_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Found", func(t *testing.T) {
		engine := tendril.New(tendril.WithResources(newSite()))
		_, err := engine.Render(ctx, "missing.xml", nil)
		assert.ErrorIs(t, err, ports.ErrResourceNotFound)
	})

	t.Run("No Resources", func(t *testing.T) {
		_, err := tendril.New().Render(ctx, "any.xml", nil)
		assert.ErrorIs(t, err, ports.ErrResourceNotFound)
	})

	t.Run("Tag Failure", func(t *testing.T) {
		engine := tendril.New(tendril.WithResources(newSite()))
		_, err := engine.Render(ctx, "broken.xml", nil)
		var tagErr *domain.TagError
		require.True(t, errors.As(err, &tagErr))
		assert.Equal(t, "forEach", tagErr.Tag.Local)
		assert.Equal(t, "broken.xml", tagErr.Location.Source)
	})

	t.Run("Strict", func(t *testing.T) {
		engine := tendril.New(tendril.WithResources(newSite()), tendril.WithStrict(true))
		_, err := engine.Render(ctx, "unknown.xml", nil)
		var unresolved *domain.UnresolvedTagError
		require.True(t, errors.As(err, &unresolved))
		assert.Equal(t, domain.Name("urn:nowhere", "thing"), unresolved.Tag)
	})

	t.Run("Lenient", func(t *testing.T) {
		engine := tendril.New(tendril.WithResources(newSite()))
		html, err := engine.Render(ctx, "unknown.xml", nil)
		require.NoError(t, err)
		assert.Equal(t, `<p><thing xmlns="urn:nowhere"/></p>`, html)
	})
}

func TestFacade_ErrorTrace(t *testing.T) {
	ctx := context.Background()

	t.Run("Nested Attribute Failure", func(t *testing.T) {
		var logs bytes.Buffer
		engine := tendril.New(tendril.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		_, err := engine.RenderString(ctx, `<page xmlns:c="tendril:core"><c:if test="${true}"><c:forEach items="${1 / nope.x}" var="i">x</c:forEach></c:if></page>`, nil)
		var attrErr *domain.AttributeError
		require.True(t, errors.As(err, &attrErr))
		assert.Equal(t, "items", attrErr.Attribute)
		assert.Equal(t, "page > {tendril:core}if > {tendril:core}forEach", attrErr.Trace())

		trace, ok := domain.TraceOf(err)
		require.True(t, ok)
		assert.Equal(t, attrErr.Trace(), trace)
		assert.Contains(t, logs.String(), `trace="page > {tendril:core}if > {tendril:core}forEach"`)
	})

	t.Run("Nested Missing Attribute", func(t *testing.T) {
		_, err := tendril.New().RenderString(ctx, `<page xmlns:c="tendril:core"><div><c:include/></div></page>`, nil)
		var missing *domain.MissingAttributeError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "page > div > {tendril:core}include", missing.Trace())
	})

	t.Run("Nested Unresolved Tag", func(t *testing.T) {
		engine := tendril.New(tendril.WithStrict(true))
		_, err := engine.RenderString(ctx, `<page xmlns:z="urn:nowhere"><div><z:thing/></div></page>`, nil)
		var unresolved *domain.UnresolvedTagError
		require.True(t, errors.As(err, &unresolved))
		assert.Equal(t, "page > div > {urn:nowhere}thing", unresolved.Trace())
	})
}

func TestFacade_LifecycleHooks(t *testing.T) {
	var started, ended atomic.Int32
	engine := tendril.New(
		tendril.WithResources(newSite()),
		tendril.WithLifecycleHooks(domain.LifecycleHooks{
			OnTagStart: func(ctx context.Context, e *domain.TagEvent) { started.Add(1) },
			OnTagEnd:   func(ctx context.Context, e *domain.TagEvent) { ended.Add(1) },
		}),
	)

	_, err := engine.Render(context.Background(), "pages/index.xml", nil)
	require.NoError(t, err)
	// html, include, head, title, body
	assert.Equal(t, int32(5), started.Load())
	assert.Equal(t, started.Load(), ended.Load())
}

func TestFacade_ConcurrentRenders(t *testing.T) {
	engine := tendril.New(tendril.WithResources(newSite()))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			html, err := engine.Render(context.Background(), "pages/index.xml", map[string]any{"title": n})
			assert.NoError(t, err)
			assert.Equal(t, fmt.Sprintf(`<html><head><title>%d</title></head><body>%d</body></html>`, n, n), html)
		}(i)
	}
	wg.Wait()
}

func TestFacade_WatchInvalidates(t *testing.T) {
	res := memory.NewResources(map[string]string{"a.xml": `<a>v1</a>`})
	engine := tendril.New(tendril.WithResources(res))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	html, err := engine.Render(ctx, "a.xml", nil)
	require.NoError(t, err)
	assert.Equal(t, "<a>v1</a>", html)

	events, err := engine.Watch(ctx)
	require.NoError(t, err)
	res.Put("a.xml", `<a>v2</a>`)

	select {
	case id := <-events:
		assert.Equal(t, "a.xml", id)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change")
	}

	html, err = engine.Render(ctx, "a.xml", nil)
	require.NoError(t, err)
	assert.Equal(t, "<a>v2</a>", html)
}

func TestFacade_List(t *testing.T) {
	engine := tendril.New(tendril.WithResources(newSite()))
	ids, err := engine.List(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ids, "pages/parts/head.xml")

	_, err = tendril.New().List(context.Background())
	assert.Error(t, err)
}

func TestFacade_StandardLibraries(t *testing.T) {
	engine := tendril.New()
	assert.Equal(t, []string{"tendril:beans", "tendril:core", "tendril:xml"}, engine.Registry().Namespaces())

	bare := tendril.New(tendril.WithoutStandardLibraries())
	assert.Empty(t, bare.Registry().Namespaces())
}
