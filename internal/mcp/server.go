package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"taskbeacon/internal/notify"
	"taskbeacon/internal/store"
)

// Deps holds shared dependencies injected into MCP handlers.
type Deps struct {
	Notifier *notify.Service
	Store    store.Store
	Version  string
}

// NewServer creates and configures the MCP server with all tools registered.
func NewServer(deps *Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"TaskBeacon",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	registerTools(s, deps)

	return s
}
