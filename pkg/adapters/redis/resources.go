// Package redis serves scripts stored as Redis strings.
//
// Each script lives at <prefix><id>. The set <prefix>index tracks every stored
// identifier and Put publishes the identifier on <prefix>changes, which Watch
// subscribes to.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/tendril/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces script keys.
const DefaultPrefix = "tendril:script:"

// Resources implements ports.ResourceResolver, ports.ResourceLister and
// ports.Watchable on top of Redis.
type Resources struct {
	client *backend.Client
	prefix string
}

type Option func(*Resources)

// WithPrefix sets the key prefix for scripts.
func WithPrefix(prefix string) Option {
	return func(r *Resources) {
		r.prefix = prefix
	}
}

// New creates a new Redis resolver with options.
func New(address, password string, db int, opts ...Option) *Resources {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis resolver from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Resources {
	r := &Resources{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Resources) key(id string) string {
	return r.prefix + id
}

func (r *Resources) indexKey() string {
	return r.prefix + "index"
}

func (r *Resources) channel() string {
	return r.prefix + "changes"
}

// Resolve fetches the script id, relative to base.
func (r *Resources) Resolve(ctx context.Context, id, base string) (io.ReadCloser, error) {
	key := ports.Join(base, id)
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", ports.ErrResourceNotFound, key)
		}
		return nil, fmt.Errorf("failed to load from redis: %w", err)
	}
	return io.NopCloser(strings.NewReader(val)), nil
}

// Put stores a script and announces the change to watchers.
func (r *Resources) Put(ctx context.Context, id, content string) error {
	key := ports.Join("", id)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(key), content, 0)
	pipe.SAdd(ctx, r.indexKey(), key)
	pipe.Publish(ctx, r.channel(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Delete removes a script and announces the change to watchers.
func (r *Resources) Delete(ctx context.Context, id string) error {
	key := ports.Join("", id)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(key))
	pipe.SRem(ctx, r.indexKey(), key)
	pipe.Publish(ctx, r.channel(), key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns the stored identifiers in lexical order.
func (r *Resources) List(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch subscribes to change announcements. The channel closes when ctx is done.
func (r *Resources) Watch(ctx context.Context) (<-chan string, error) {
	sub := r.client.Subscribe(ctx, r.channel())
	// Wait for the subscription to be confirmed so no Put is missed after Watch returns.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := make(chan string, 1)
	msgs := sub.Channel()

	go func() {
		defer close(ch)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// Close closes the underlying client.
func (r *Resources) Close() error {
	return r.client.Close()
}
