// Package library maps vocabulary names to tag implementations.
//
// A Library groups the tags of one namespace. A Registry binds namespaces to libraries
// and resolves qualified names with priority exact registration, then the library's
// dynamic factory, then unresolved.
package library

import (
	"sort"
	"sync"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/script"
)

// Library is the set of tags of one namespace. Safe for concurrent use.
type Library struct {
	mu      sync.RWMutex
	tags    map[string]script.Factory
	dynamic script.DynamicFactory
}

// New creates an empty library.
func New() *Library {
	return &Library{
		tags: make(map[string]script.Factory),
	}
}

// Register binds local to factory. An existing binding is overwritten.
func (l *Library) Register(local string, factory script.Factory) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tags[local] = factory
	return l
}

// SetDynamic installs the fallback for names without an explicit binding.
func (l *Library) SetDynamic(factory script.DynamicFactory) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dynamic = factory
	return l
}

// Lookup returns the factory for local.
func (l *Library) Lookup(local string) (script.Factory, bool) {
	l.mu.RLock()
	factory, ok := l.tags[local]
	dynamic := l.dynamic
	l.mu.RUnlock()

	if ok {
		return factory, true
	}
	if dynamic == nil {
		return nil, false
	}
	return dynamic(local)
}

// Names lists the explicitly registered local names.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.tags))
	for name := range l.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry binds namespaces to libraries. Safe for concurrent use; registration is
// expected to happen before runs start.
type Registry struct {
	mu        sync.RWMutex
	libraries map[string]*Library
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		libraries: make(map[string]*Library),
	}
}

// Register binds namespace to lib, replacing any previous binding.
func (r *Registry) Register(namespace string, lib *Library) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.libraries[namespace] = lib
}

// Library returns the library bound to namespace.
func (r *Registry) Library(namespace string) (*Library, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lib, ok := r.libraries[namespace]
	return lib, ok
}

// Resolve implements script.Resolver.
func (r *Registry) Resolve(name domain.QName) (script.Factory, bool) {
	lib, ok := r.Library(name.Namespace)
	if !ok {
		return nil, false
	}
	return lib.Lookup(name.Local)
}

// Namespaces lists the bound namespaces.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	namespaces := make([]string, 0, len(r.libraries))
	for ns := range r.libraries {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces
}
