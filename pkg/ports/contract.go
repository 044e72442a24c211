package ports

import (
	"context"
	"io"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResourceResolverContract runs a suite of tests to verify that a ResourceResolver
// implementation adheres to the defined interface contract.
// seed maps identifiers (relative to the resolver root) to the content the adapter was
// prepared with; it must contain at least one entry.
func RunResourceResolverContract(t *testing.T, resolver ResourceResolver, seed map[string]string) {
	t.Helper()
	ctx := context.Background()
	require.NotEmpty(t, seed, "contract needs at least one seeded resource")

	t.Run("Resolve Seeded", func(t *testing.T) {
		for id, want := range seed {
			rc, err := resolver.Resolve(ctx, id, "")
			require.NoError(t, err, "Resolve(%q) should not return error", id)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, want, string(got))
		}
	})

	t.Run("Resolve Non-Existent", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "non-existent-resource.xml", "")
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("Resolve Relative To Base", func(t *testing.T) {
		for id, want := range seed {
			// The file name of a resource, resolved against the resource itself, is the resource.
			rc, err := resolver.Resolve(ctx, path.Base(id), id)
			require.NoError(t, err, "Resolve(%q, base=%q)", path.Base(id), id)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, want, string(got))
		}
	})

	if lister, ok := resolver.(ResourceLister); ok {
		t.Run("List", func(t *testing.T) {
			ids, err := lister.List(ctx)
			require.NoError(t, err)
			for id := range seed {
				assert.Contains(t, ids, id)
			}
		})
	}
}
