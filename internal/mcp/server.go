package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/cadence/internal/interchange"
	"github.com/kolapsis/cadence/internal/tracker"
)

// Deps holds shared dependencies injected into MCP handlers.
type Deps struct {
	Tracker  *tracker.Tracker
	Exporter *interchange.Exporter
	Version  string
}

// NewServer creates and configures the MCP server with all tools registered.
func NewServer(deps *Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"Cadence",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	registerTools(s, deps)

	return s
}
