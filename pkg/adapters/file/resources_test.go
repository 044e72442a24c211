package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tendril/pkg/adapters/file"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	res := file.New(dir)
	for id, content := range files {
		require.NoError(t, res.Put(context.Background(), id, content))
	}
	return dir
}

func TestResources_Contract(t *testing.T) {
	files := map[string]string{
		"greeting.xml":       "<p>Hello</p>",
		"pages/index.jelly":  "<html/>",
		"pages/nav/menu.xml": "<ul/>",
	}
	dir := seed(t, files)
	ports.RunResourceResolverContract(t, file.New(dir), files)
}

func TestResources_List(t *testing.T) {
	dir := seed(t, map[string]string{
		"b.xml":         "<b/>",
		"a/c.xml":       "<c/>",
		"notes.txt":     "not a script",
		".hidden/x.xml": "<x/>",
	})

	ids, err := file.New(dir).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a/c.xml", "b.xml"}, ids)

	ids, err = file.New(filepath.Join(dir, "missing")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResources_RejectsEscapes(t *testing.T) {
	dir := seed(t, map[string]string{"pages/a.xml": "<a/>"})
	res := file.New(dir)

	_, err := res.Resolve(context.Background(), "../etc/passwd", "")
	assert.ErrorIs(t, err, file.ErrOutsideRoot)

	_, err = res.Resolve(context.Background(), "../../x.xml", "pages/a.xml")
	assert.ErrorIs(t, err, file.ErrOutsideRoot)
}

func TestResources_ResolveDirectory(t *testing.T) {
	dir := seed(t, map[string]string{"pages/a.xml": "<a/>"})
	_, err := file.New(dir).Resolve(context.Background(), "pages", "")
	assert.ErrorIs(t, err, ports.ErrResourceNotFound)
}

func TestResources_Watch(t *testing.T) {
	dir := seed(t, map[string]string{"a.xml": "<a/>"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := file.New(dir).Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<b/>"), 0644))

	select {
	case id := <-changes:
		assert.Equal(t, "a.xml", id)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change notification")
	}
}
