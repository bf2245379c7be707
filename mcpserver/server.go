package mcpserver

import (
	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server for mcpcrawl
type Server struct {
	server *server.MCPServer
}

// NewServer creates a new MCP server instance over the given store
func NewServer(st *store.Store) *Server {
	s := server.NewMCPServer("mcpcrawl", probe.Version)

	registerTools(s, st)

	return &Server{
		server: s,
	}
}

// Run starts the MCP server on stdio
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

// registerTools registers all available tools with the MCP server
func registerTools(s *server.MCPServer, st *store.Store) {
	tools := InitTools(st)
	s.AddTools(tools...)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
