package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/saudedigital/saude/internal/facilities"
	"github.com/saudedigital/saude/internal/triage"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the triage tools to assistants.
type Server struct {
	engine    *triage.Engine
	directory *facilities.Directory
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(engine *triage.Engine, directory *facilities.Directory) *Server {
	s := &Server{
		engine:    engine,
		directory: directory,
	}

	s.mcp = server.NewMCPServer(
		"saude",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(classifyMessageTool, s.handleClassifyMessage)
	s.mcp.AddTool(emergencyContactsTool, s.handleEmergencyContacts)
	s.mcp.AddTool(findFacilitiesTool, s.handleFindFacilities)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
