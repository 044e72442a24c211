package redis_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tendril/pkg/adapters/redis"
	"github.com/aretw0/tendril/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Resources) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewFromClient(client, opts...)
}

func TestRedisResources_Contract(t *testing.T) {
	_, res := setup(t)
	seed := map[string]string{
		"greeting":        "<p>Hello</p>",
		"pages/index.xml": "<html/>",
	}
	for id, content := range seed {
		require.NoError(t, res.Put(context.Background(), id, content))
	}
	ports.RunResourceResolverContract(t, res, seed)
}

func TestRedisResources_Prefix(t *testing.T) {
	mr, res := setup(t, redis.WithPrefix("test:"))
	require.NoError(t, res.Put(context.Background(), "a", "<a/>"))

	assert.True(t, mr.Exists("test:a"), "script key should carry the prefix")
	members, err := mr.SMembers("test:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, members)
}

func TestRedisResources_Delete(t *testing.T) {
	ctx := context.Background()
	_, res := setup(t)
	require.NoError(t, res.Put(ctx, "a", "<a/>"))
	require.NoError(t, res.Delete(ctx, "a"))

	_, err := res.Resolve(ctx, "a", "")
	assert.ErrorIs(t, err, ports.ErrResourceNotFound)
	ids, err := res.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisResources_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, res := setup(t)

	changes, err := res.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, res.Put(ctx, "./pages/a", "<a/>"))

	select {
	case id := <-changes:
		assert.Equal(t, "pages/a", id)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}

	rc, err := res.Resolve(ctx, "a", "pages/index")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "<a/>", string(body))

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-changes
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
