package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/tendril/pkg/ports"
)

// Resources implements ports.ResourceResolver, ports.ResourceLister and ports.Watchable
// over an in-memory map. Safe for concurrent use.
type Resources struct {
	mu       sync.RWMutex
	docs     map[string]string
	watchers []chan string
}

// NewResources creates resources from id -> content pairs.
// Ids are normalized the same way references are, so "./a.xml" and "a.xml" are one resource.
func NewResources(data map[string]string) *Resources {
	docs := make(map[string]string, len(data))
	for k, v := range data {
		docs[ports.Join("", k)] = v
	}
	return &Resources{docs: docs}
}

// Resolve returns the content of id, interpreted relative to base.
func (r *Resources) Resolve(ctx context.Context, id, base string) (io.ReadCloser, error) {
	key := ports.Join(base, id)

	r.mu.RLock()
	content, ok := r.docs[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrResourceNotFound, key)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

// List returns all resource ids in deterministic order.
func (r *Resources) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.docs))
	for k := range r.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Put creates or replaces a resource and notifies watchers.
func (r *Resources) Put(id, content string) {
	key := ports.Join("", id)

	r.mu.Lock()
	r.docs[key] = content
	watchers := append([]chan string(nil), r.watchers...)
	r.mu.Unlock()

	for _, w := range watchers {
		select {
		case w <- key:
		default:
		}
	}
}

// Watch reports ids changed through Put until ctx is done.
// Notifications are dropped when the receiver falls behind.
func (r *Resources) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	r.mu.Lock()
	r.watchers = append(r.watchers, ch)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, w := range r.watchers {
			if w == ch {
				r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
