// Package scope implements the hierarchical variable environment scripts run against.
//
// A Scope resolves names locally first and then through its parent chain. Writes are
// either local (SetLocal) or published to the nearest export boundary (SetExported),
// which is how a deeply nested tag makes a result visible to the whole run.
package scope

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/tendril/pkg/ports"
)

// Scope is a variable environment with parent delegation.
// A child never owns its parent; the parent must outlive it.
// Scopes are safe for concurrent use.
type Scope struct {
	parent  *Scope
	export  bool
	base    string
	hasBase bool

	// Root only.
	resources ports.ResourceResolver

	mu   sync.RWMutex
	vars map[string]any
}

// Option configures a root scope.
type Option func(*Scope)

// WithResources registers the resolver used by Resolve.
func WithResources(r ports.ResourceResolver) Option {
	return func(s *Scope) {
		s.resources = r
	}
}

// WithBase sets the location relative identifiers are resolved against.
func WithBase(base string) Option {
	return func(s *Scope) {
		s.base = base
		s.hasBase = true
	}
}

// WithVariables seeds the root with a copy of vars.
func WithVariables(vars map[string]any) Option {
	return func(s *Scope) {
		maps.Copy(s.vars, vars)
	}
}

// New creates a root scope. The root is always an export boundary.
func New(opts ...Option) *Scope {
	s := &Scope{
		export: true,
		vars:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewChild returns a scope whose parent is s.
func (s *Scope) NewChild() *Scope {
	return &Scope{
		parent: s,
		vars:   make(map[string]any),
	}
}

// NewExportBoundary returns a child scope that captures exported writes made below it.
func (s *Scope) NewExportBoundary() *Scope {
	c := s.NewChild()
	c.export = true
	return c
}

// WithBase returns a child scope resolving relative identifiers against base.
// Used when running a script loaded from another location.
func (s *Scope) WithBase(base string) *Scope {
	c := s.NewChild()
	c.base = base
	c.hasBase = true
	return c
}

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Root returns the outermost scope.
func (s *Scope) Root() *Scope {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsExportBoundary reports whether SetExported writes land in s.
func (s *Scope) IsExportBoundary() bool {
	return s.export
}

// Get resolves name locally, then through the parent chain.
func (s *Scope) Get(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.vars[name]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup is Get without the presence flag.
func (s *Scope) Lookup(name string) any {
	v, _ := s.Get(name)
	return v
}

// SetLocal binds name in s only, shadowing any ancestor binding.
func (s *Scope) SetLocal(name string, value any) {
	s.mu.Lock()
	s.vars[name] = value
	s.mu.Unlock()
}

// SetExported binds name in the nearest export boundary (s itself if it is one).
func (s *Scope) SetExported(name string, value any) {
	s.boundary().SetLocal(name, value)
}

// Remove deletes a local binding. Ancestor bindings become visible again.
func (s *Scope) Remove(name string) {
	s.mu.Lock()
	delete(s.vars, name)
	s.mu.Unlock()
}

// Names lists every visible name, sorted.
func (s *Scope) Names() []string {
	return slices.Sorted(maps.Keys(s.Variables()))
}

// Variables returns a flattened snapshot of every visible binding.
// Local bindings shadow ancestors.
func (s *Scope) Variables() map[string]any {
	chain := make([]*Scope, 0, 4)
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		cur := chain[i]
		cur.mu.RLock()
		maps.Copy(out, cur.vars)
		cur.mu.RUnlock()
	}
	return out
}

// Base returns the location relative identifiers are resolved against.
func (s *Scope) Base() string {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.hasBase {
			return cur.base
		}
	}
	return ""
}

// Resources returns the root's resolver, or nil.
func (s *Scope) Resources() ports.ResourceResolver {
	return s.Root().resources
}

// Resolve opens a resource through the root's resolver, relative to Base.
func (s *Scope) Resolve(ctx context.Context, id string) (io.ReadCloser, error) {
	r := s.Resources()
	if r == nil {
		return nil, fmt.Errorf("resolve %q: no resource resolver configured: %w", id, ports.ErrResourceNotFound)
	}
	return r.Resolve(ctx, id, s.Base())
}

func (s *Scope) boundary() *Scope {
	cur := s
	for !cur.export && cur.parent != nil {
		cur = cur.parent
	}
	return cur
}
