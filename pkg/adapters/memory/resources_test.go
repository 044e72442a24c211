package memory_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResources_Contract(t *testing.T) {
	seed := map[string]string{
		"main.xml":          "<main/>",
		"partials/head.xml": "<head/>",
	}
	ports.RunResourceResolverContract(t, memory.NewResources(seed), seed)
}

func TestResources_PutAndWatch(t *testing.T) {
	res := memory.NewResources(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := res.Watch(ctx)
	require.NoError(t, err)

	res.Put("./a.xml", "v1")

	select {
	case id := <-events:
		assert.Equal(t, "a.xml", id)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for watch event")
	}

	rc, err := res.Resolve(ctx, "a.xml", "")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b))

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-events
		return !open
	}, time.Second, 10*time.Millisecond)
}
