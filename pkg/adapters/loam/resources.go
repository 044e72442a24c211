// Package loam serves scripts stored as documents in a Loam repository.
//
// A script document is a markdown file whose body is the markup and whose
// frontmatter carries ScriptMetadata:
//
//	---
//	title: Greeting
//	vars:
//	  name: World
//	---
//	<p>Hello, ${name}!</p>
//
// Identifiers are document paths without extension ("pages/index").
package loam

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/tendril/pkg/ports"
)

// Resources adapts a Loam repository to ports.ResourceResolver, ports.ResourceLister
// and ports.Watchable.
type Resources struct {
	Repo *loam.TypedRepository[ScriptMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ScriptMetadata]) *Resources {
	return &Resources{
		Repo: repo,
	}
}

// Open initializes a read-only repository at path and wraps it.
func Open(path string) (*Resources, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode keeps numeric frontmatter values consistent across formats;
	// read-only avoids Loam's sandbox behaviour, scripts are never written back.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ScriptMetadata](repo)), nil
}

// Resolve returns the markup body of the script id, relative to base.
func (r *Resources) Resolve(ctx context.Context, id, base string) (io.ReadCloser, error) {
	key := trimExtension(ports.Join(trimExtension(base), id))
	doc, err := r.Repo.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrResourceNotFound, key, err)
	}
	return io.NopCloser(strings.NewReader(doc.Content)), nil
}

// Metadata returns the frontmatter of the script id.
func (r *Resources) Metadata(ctx context.Context, id string) (ScriptMetadata, error) {
	key := trimExtension(ports.Join("", id))
	doc, err := r.Repo.Get(ctx, key)
	if err != nil {
		return ScriptMetadata{}, fmt.Errorf("%w: %s: %v", ports.ErrResourceNotFound, key, err)
	}
	return doc.Data, nil
}

// List lists all scripts in the repository.
func (r *Resources) List(ctx context.Context) ([]string, error) {
	docs, err := r.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		// Documents are addressed by path; an explicit id in the frontmatter must agree.
		id := trimExtension(doc.ID)
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// Watch implements ports.Watchable.
func (r *Resources) Watch(ctx context.Context) (<-chan string, error) {
	events, err := r.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
