package ports

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrResourceNotFound is returned when an identifier does not name any resource.
var ErrResourceNotFound = errors.New("resource not found")

// ResourceResolver defines how scripts load external content.
// Identifiers may be relative; they are resolved against base, the location of the
// script that asked for them.
type ResourceResolver interface {
	// Resolve opens the resource. The caller closes the returned reader.
	// It returns an error wrapping ErrResourceNotFound if nothing matches.
	Resolve(ctx context.Context, id string, base string) (io.ReadCloser, error)
}

// ResourceLister is implemented by resolvers that can enumerate their resources.
// This is used for introspection tools (e.g. 'tendril serve' listing, MCP resources).
type ResourceLister interface {
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for resolvers that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the identifier of every changed resource.
	Watch(ctx context.Context) (<-chan string, error)
}

// Join resolves id against base using slash-separated paths.
// Absolute identifiers ("/x", "scheme:...") are returned cleaned and unchanged otherwise.
func Join(base, id string) string {
	if id == "" {
		return path.Clean(base)
	}
	if strings.Contains(id, "://") || strings.HasPrefix(id, "/") {
		return id
	}
	dir := base
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir = path.Dir(dir)
	}
	return strings.TrimPrefix(path.Clean(path.Join(dir, id)), "./")
}
