package script

import (
	"context"
	"log/slog"

	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/domain"
)

// Loader compiles the resource id, relative to base, into a script.
// Tags that execute other documents (include) reach it through the Execution.
type Loader interface {
	Load(ctx context.Context, id, base string) (Script, error)
}

// Execution holds the services shared by every node of one run.
type Execution struct {
	Resolver Resolver
	Loader   Loader
	// Strict turns unresolved namespaced tags into errors instead of static markup.
	Strict bool
	Logger *slog.Logger
	Hooks  domain.LifecycleHooks
}

type executionKey struct{}

type frameKey struct{}

// frame is one active tag. Frames form a stack through the context.
type frame struct {
	tag    Tag
	name   domain.QName
	depth  int
	parent *frame
}

// WithExecution binds exec to ctx for the duration of a run.
func WithExecution(ctx context.Context, exec *Execution) context.Context {
	return context.WithValue(ctx, executionKey{}, exec)
}

var defaultExecution = &Execution{Logger: logging.NewNop()}

// ExecutionFrom returns the execution bound to ctx, or an empty one that resolves nothing.
func ExecutionFrom(ctx context.Context) *Execution {
	if exec, ok := ctx.Value(executionKey{}).(*Execution); ok && exec != nil {
		return exec
	}
	return defaultExecution
}

// Log returns the run logger, never nil.
func (e *Execution) Log() *slog.Logger {
	if e.Logger == nil {
		return defaultExecution.Logger
	}
	return e.Logger
}

func withFrame(ctx context.Context, tag Tag, name domain.QName) context.Context {
	parent := currentFrame(ctx)
	f := &frame{tag: tag, name: name, parent: parent}
	if parent != nil {
		f.depth = parent.depth + 1
	}
	return context.WithValue(ctx, frameKey{}, f)
}

func currentFrame(ctx context.Context) *frame {
	f, _ := ctx.Value(frameKey{}).(*frame)
	return f
}

// CurrentTag returns the tag whose DoTag is executing on ctx, or nil at top level.
func CurrentTag(ctx context.Context) Tag {
	if f := currentFrame(ctx); f != nil {
		return f.tag
	}
	return nil
}

// Frames returns the names of the active tags, innermost first.
func Frames(ctx context.Context) []domain.QName {
	var names []domain.QName
	for f := currentFrame(ctx); f != nil; f = f.parent {
		names = append(names, f.name)
	}
	return names
}
