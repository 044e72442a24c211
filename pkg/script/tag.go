package script

import (
	"context"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/scope"
)

// Tag is a handler instance. A new one is created for every execution of an
// Invocation and discarded afterwards.
//
// The driver calls, in order: SetParent, SetBody, SetScope, one attribute assignment
// per declared attribute, Validate (when implemented) and finally DoTag.
type Tag interface {
	Parent() Tag
	SetParent(parent Tag)
	Body() Script
	SetBody(body Script)
	Scope() *scope.Scope
	SetScope(sc *scope.Scope) error
	DoTag(ctx context.Context, out output.Output) error
	// InvokeBody runs the body against the tag's scope. It may be called any number of times.
	InvokeBody(ctx context.Context, out output.Output) error
}

// Factory creates a tag instance.
type Factory func() Tag

// DynamicFactory returns the factory for a local name not registered explicitly.
// It reports false when it does not handle the name.
type DynamicFactory func(local string) (Factory, bool)

// Resolver maps a vocabulary name to the factory that implements it.
type Resolver interface {
	Resolve(name domain.QName) (Factory, bool)
}

// Trimmer is implemented by tags that track the whitespace trim flag.
type Trimmer interface {
	SetTrim(trim bool)
	IsTrim() bool
}

// AttributeSetter receives attributes by name instead of struct binding.
type AttributeSetter interface {
	SetAttribute(name string, value any) error
}

// Validator is called after attributes are assigned and before DoTag.
type Validator interface {
	Validate() error
}

// FindAncestor returns the nearest ancestor of from that is a T.
func FindAncestor[T any](from Tag) (T, bool) {
	for p := from.Parent(); p != nil; p = p.Parent() {
		if t, ok := p.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// FindAncestorFunc returns the nearest ancestor of from accepted by match, or nil.
func FindAncestorFunc(from Tag, match func(Tag) bool) Tag {
	for p := from.Parent(); p != nil; p = p.Parent() {
		if match(p) {
			return p
		}
	}
	return nil
}
