package tendril

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/tendril/internal/compiler"
	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/library"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/aretw0/tendril/pkg/scope"
	"github.com/aretw0/tendril/pkg/script"
	"github.com/aretw0/tendril/pkg/tags/beans"
	"github.com/aretw0/tendril/pkg/tags/core"
	"github.com/aretw0/tendril/pkg/tags/xml"
)

// Compiler turns a markup document into a script tree.
type Compiler interface {
	Parse(r io.Reader, name string) (script.Script, error)
}

// Engine is the high-level entry point for the tendril library.
// It compiles documents, caches compiled scripts by resource id and runs them with
// the configured tag libraries. An Engine is safe for concurrent use.
type Engine struct {
	registry  *library.Registry
	libraries map[string]*library.Library
	resources ports.ResourceResolver
	compiler  Compiler
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	strict    bool
	stdlib    bool

	cache sync.Map
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStrict makes unresolved namespaced tags fail the run instead of being
// emitted as markup.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithResources sets where CompileResource, include and resource lookups read from.
func WithResources(r ports.ResourceResolver) Option {
	return func(e *Engine) {
		e.resources = r
	}
}

// WithLibrary binds a tag library to namespace, overriding any standard library
// registered under the same namespace.
func WithLibrary(namespace string, lib *library.Library) Option {
	return func(e *Engine) {
		e.libraries[namespace] = lib
	}
}

// WithRegistry replaces the registry the engine resolves tags with.
func WithRegistry(reg *library.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithoutStandardLibraries skips registering the core, beans and xml libraries.
func WithoutStandardLibraries() Option {
	return func(e *Engine) {
		e.stdlib = false
	}
}

// WithCompiler replaces the markup compiler.
func WithCompiler(c Compiler) Option {
	return func(e *Engine) {
		e.compiler = c
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		libraries: make(map[string]*library.Library),
		stdlib:    true,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.registry == nil {
		eng.registry = library.NewRegistry()
	}
	if eng.stdlib {
		for ns, lib := range StandardLibraries() {
			if _, ok := eng.registry.Library(ns); !ok {
				eng.registry.Register(ns, lib)
			}
		}
	}
	for ns, lib := range eng.libraries {
		eng.registry.Register(ns, lib)
	}

	if eng.compiler == nil {
		eng.compiler = compiler.NewParser()
	}
	// Ensure logger is initialized so tags never log through nil.
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	return eng
}

// StandardLibraries returns fresh instances of the bundled tag libraries by namespace.
func StandardLibraries() map[string]*library.Library {
	return map[string]*library.Library{
		core.Namespace:  core.Library(),
		beans.Namespace: beans.Library(),
		xml.Namespace:   xml.Library(),
	}
}

// Registry returns the tag registry.
func (e *Engine) Registry() *library.Registry {
	return e.registry
}

// Resources returns the configured resource resolver, possibly nil.
func (e *Engine) Resources() ports.ResourceResolver {
	return e.resources
}

// Compile compiles a document without caching it.
func (e *Engine) Compile(r io.Reader, name string) (script.Script, error) {
	return e.compiler.Parse(r, name)
}

// CompileString is Compile for in-memory sources.
func (e *Engine) CompileString(src, name string) (script.Script, error) {
	return e.Compile(strings.NewReader(src), name)
}

// CompileResource compiles the resource id, reusing a previous compilation when
// the id has not been invalidated.
func (e *Engine) CompileResource(ctx context.Context, id string) (script.Script, error) {
	return e.Load(ctx, id, "")
}

// Load implements script.Loader over the engine resources and cache.
func (e *Engine) Load(ctx context.Context, id, base string) (script.Script, error) {
	key := ports.Join(base, id)
	if s, ok := e.cache.Load(key); ok {
		return s.(script.Script), nil
	}
	if e.resources == nil {
		return nil, fmt.Errorf("%w: %s (no resources configured)", ports.ErrResourceNotFound, key)
	}

	rc, err := e.resources.Resolve(ctx, id, base)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	s, err := e.compiler.Parse(rc, key)
	if err != nil {
		return nil, err
	}
	actual, _ := e.cache.LoadOrStore(key, s)
	e.logger.Debug("Compiled script", "script", key)
	return actual.(script.Script), nil
}

// Invalidate drops the cached compilation of id.
func (e *Engine) Invalidate(id string) {
	e.cache.Delete(ports.Join("", id))
}

// InvalidateAll empties the compilation cache.
func (e *Engine) InvalidateAll() {
	e.cache.Clear()
}

// Run executes s against a new root scope seeded with vars, streaming to out.
// The output is bracketed by StartDocument and EndDocument.
func (e *Engine) Run(ctx context.Context, s script.Script, vars map[string]any, out output.Output) error {
	return e.run(ctx, s, e.newScope(vars, ""), out, e.logger)
}

// RunResource compiles (or reuses) the resource id and runs it. Relative
// references inside the script resolve against id.
func (e *Engine) RunResource(ctx context.Context, id string, vars map[string]any, out output.Output) error {
	s, err := e.CompileResource(ctx, id)
	if err != nil {
		return err
	}
	key := ports.Join("", id)
	return e.run(ctx, s, e.newScope(vars, key), out, e.logger.With("script", key))
}

// Render runs the resource id and returns its escaped markup.
func (e *Engine) Render(ctx context.Context, id string, vars map[string]any) (string, error) {
	var b strings.Builder
	if err := e.RunResource(ctx, id, vars, output.NewXMLWriter(&b, true)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderString compiles src without caching it and returns its escaped markup.
func (e *Engine) RenderString(ctx context.Context, src string, vars map[string]any) (string, error) {
	s, err := e.CompileString(src, "inline")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := e.Run(ctx, s, vars, output.NewXMLWriter(&b, true)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// List returns the ids of the available resources.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	if l, ok := e.resources.(ports.ResourceLister); ok {
		return l.List(ctx)
	}
	return nil, fmt.Errorf("current resources do not support listing")
}

// Watch returns a channel that signals when an underlying resource changes.
// Cached compilations of changed resources are invalidated before the signal.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	w, ok := e.resources.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current resources do not support watching")
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for id := range events {
			// Includes may depend on the changed resource.
			e.InvalidateAll()
			select {
			case out <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (e *Engine) newScope(vars map[string]any, base string) *scope.Scope {
	return scope.New(
		scope.WithResources(e.resources),
		scope.WithVariables(vars),
		scope.WithBase(base),
	)
}

func (e *Engine) run(ctx context.Context, s script.Script, sc *scope.Scope, out output.Output, logger *slog.Logger) error {
	ctx = script.WithExecution(ctx, &script.Execution{
		Resolver: e.registry,
		Loader:   e,
		Strict:   e.strict,
		Logger:   logger,
		Hooks:    e.hooks,
	})

	if err := out.StartDocument(); err != nil {
		return err
	}
	if err := s.Run(ctx, sc, out); err != nil {
		if trace, ok := domain.TraceOf(err); ok {
			logger.Error("Script failed", "error", err, "trace", trace)
		} else {
			logger.Error("Script failed", "error", err)
		}
		return err
	}
	return out.EndDocument()
}
