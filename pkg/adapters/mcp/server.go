// Package mcp exposes an engine as a Model Context Protocol server.
//
// Tools:
//
//	render_script   render a script id with optional JSON variables
//	render_source   compile and render inline markup
//	list_scripts    list available script ids
//
// Resources: tendril://scripts (the id list) and tendril://scripts/{id} (rendered output).
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	listURI       = "tendril://scripts"
	scriptURIBase = "tendril://scripts/"
)

// RenderResponse provides a unified structure across adapters.
type RenderResponse struct {
	ID     string `json:"id,omitempty" jsonschema_description:"The rendered script id"`
	Output string `json:"output" jsonschema_description:"The rendered markup"`
}

// Engine defines the interface required by the MCP server.
type Engine interface {
	Render(ctx context.Context, id string, vars map[string]any) (string, error)
	RenderString(ctx context.Context, src string, vars map[string]any) (string, error)
	List(ctx context.Context) ([]string, error)
}

var _ Engine = (*tendril.Engine)(nil)

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("tendril-mcp", strings.TrimSpace(tendril.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	renderTool := mcp.NewTool("render_script",
		mcp.WithDescription("Render a stored script and return its markup."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The script id, as returned by list_scripts")),
		mcp.WithString("vars", mcp.Description("JSON object of variables (optional)")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(renderTool, mcp.NewStructuredToolHandler(s.handleRenderScript))

	sourceTool := mcp.NewTool("render_source",
		mcp.WithDescription("Compile and render inline script markup."),
		mcp.WithString("source", mcp.Required(), mcp.Description("The script markup")),
		mcp.WithString("vars", mcp.Description("JSON object of variables (optional)")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(sourceTool, mcp.NewStructuredToolHandler(s.handleRenderSource))

	s.mcpServer.AddTool(mcp.NewTool("list_scripts",
		mcp.WithDescription("List the ids of the available scripts."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.engine.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func parseVars(args map[string]any) (map[string]any, error) {
	vars := make(map[string]any)
	switch v := args["vars"].(type) {
	case string:
		if v == "" {
			return vars, nil
		}
		if err := json.Unmarshal([]byte(v), &vars); err != nil {
			return nil, fmt.Errorf("vars must be a JSON object: %w", err)
		}
	case map[string]any:
		for k, val := range v {
			vars[k] = val
		}
	}
	return vars, nil
}

func (s *Server) handleRenderScript(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (RenderResponse, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return RenderResponse{}, fmt.Errorf("id is required")
	}
	vars, err := parseVars(args)
	if err != nil {
		return RenderResponse{}, err
	}

	out, err := s.engine.Render(ctx, id, vars)
	if err != nil {
		s.logger.Warn("MCP Render failed", "script", id, "error", err)
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return RenderResponse{ID: id, Output: out}, nil
}

func (s *Server) handleRenderSource(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (RenderResponse, error) {
	src, _ := args["source"].(string)
	vars, err := parseVars(args)
	if err != nil {
		return RenderResponse{}, err
	}

	out, err := s.engine.RenderString(ctx, src, vars)
	if err != nil {
		s.logger.Warn("MCP Render failed", "error", err)
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return RenderResponse{Output: out}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(listURI, "Available scripts",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list scripts: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      listURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(scriptURIBase+"{id}", "Rendered script",
		mcp.WithTemplateMIMEType("application/xml"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, scriptURIBase)
		out, err := s.engine.Render(ctx, id, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", id, err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/xml",
				Text:     out,
			},
		}, nil
	})
}
