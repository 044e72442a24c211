package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *Server {
	eng := tendril.New(tendril.WithResources(memory.NewResources(map[string]string{
		"hello.xml": `<p>Hello, ${name}!</p>`,
	})))
	return NewServer(eng, nil)
}

func TestHandleRenderScript(t *testing.T) {
	s := newServer()

	resp, err := s.handleRenderScript(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"id":   "hello.xml",
		"vars": `{"name": "Ada"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello.xml", resp.ID)
	assert.Equal(t, "<p>Hello, Ada!</p>", resp.Output)

	_, err = s.handleRenderScript(context.Background(), mcp.CallToolRequest{}, map[string]any{"id": "nope.xml"})
	assert.ErrorIs(t, err, ports.ErrResourceNotFound)

	_, err = s.handleRenderScript(context.Background(), mcp.CallToolRequest{}, map[string]any{})
	assert.Error(t, err)
}

func TestHandleRenderSource(t *testing.T) {
	s := newServer()

	resp, err := s.handleRenderSource(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"source": `<c:out xmlns:c="tendril:core" value="${a + b}"/>`,
		"vars":   map[string]any{"a": 1, "b": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "3", resp.Output)

	_, err = s.handleRenderSource(context.Background(), mcp.CallToolRequest{}, map[string]any{"source": "<p>"})
	assert.Error(t, err)
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, vars)

	vars, err = parseVars(map[string]any{"vars": `{"x": [1, 2]}`})
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0}, vars["x"])

	_, err = parseVars(map[string]any{"vars": `[1]`})
	assert.Error(t, err)
}
