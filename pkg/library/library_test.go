package library_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/library"
	"github.com/aretw0/tendril/pkg/output"
	"github.com/aretw0/tendril/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedTag struct {
	script.Support
	name string
}

func (t *namedTag) DoTag(ctx context.Context, out output.Output) error {
	return out.Write(t.name)
}

func named(name string) script.Factory {
	return func() script.Tag { return &namedTag{name: name} }
}

func TestRegistry_ResolutionPriority(t *testing.T) {
	lib := library.New().
		Register("exact", named("exact")).
		SetDynamic(func(local string) (script.Factory, bool) {
			if local == "rejected" {
				return nil, false
			}
			return named("dynamic:" + local), true
		})

	reg := library.NewRegistry()
	reg.Register("urn:test", lib)

	t.Run("Exact Wins", func(t *testing.T) {
		f, ok := reg.Resolve(domain.Name("urn:test", "exact"))
		require.True(t, ok)
		assert.Equal(t, "exact", f().(*namedTag).name)
	})

	t.Run("Dynamic Fallback", func(t *testing.T) {
		f, ok := reg.Resolve(domain.Name("urn:test", "other"))
		require.True(t, ok)
		assert.Equal(t, "dynamic:other", f().(*namedTag).name)
	})

	t.Run("Dynamic Rejects", func(t *testing.T) {
		_, ok := reg.Resolve(domain.Name("urn:test", "rejected"))
		assert.False(t, ok)
	})

	t.Run("Unknown Namespace", func(t *testing.T) {
		_, ok := reg.Resolve(domain.Name("urn:none", "exact"))
		assert.False(t, ok)
	})
}

func TestRegistry_DynamicBuildsOncePerInvocation(t *testing.T) {
	var built atomic.Int32
	lib := library.New().SetDynamic(func(local string) (script.Factory, bool) {
		if local == "rejected" {
			return nil, false
		}
		return func() script.Tag {
			built.Add(1)
			return &namedTag{name: local}
		}, true
	})
	reg := library.NewRegistry()
	reg.Register("urn:test", lib)

	_, ok := reg.Resolve(domain.Name("urn:test", "rejected"))
	assert.False(t, ok)
	assert.Equal(t, int32(0), built.Load())

	f, ok := reg.Resolve(domain.Name("urn:test", "item"))
	require.True(t, ok)
	assert.Equal(t, int32(0), built.Load(), "resolving must not build a tag")

	assert.Equal(t, "item", f().(*namedTag).name)
	assert.Equal(t, int32(1), built.Load())
}

func TestRegistry_FreshInstances(t *testing.T) {
	reg := library.NewRegistry()
	reg.Register("ns", library.New().Register("t", named("t")))

	f, ok := reg.Resolve(domain.Name("ns", "t"))
	require.True(t, ok)
	assert.NotSame(t, f(), f())
}

func TestRegistry_Deterministic(t *testing.T) {
	reg := library.NewRegistry()
	reg.Register("ns", library.New().Register("t", named("t")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, ok := reg.Resolve(domain.Name("ns", "t"))
			assert.True(t, ok)
			assert.Equal(t, "t", f().(*namedTag).name)
		}()
	}
	wg.Wait()
}

func TestIntrospection(t *testing.T) {
	reg := library.NewRegistry()
	reg.Register("b", library.New().Register("z", named("z")).Register("a", named("a")))
	reg.Register("a", library.New())

	assert.Equal(t, []string{"a", "b"}, reg.Namespaces())
	lib, ok := reg.Library("b")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "z"}, lib.Names())
}
