package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/trustrank/internal/models"
)

const (
	serverName    = "trustrank"
	serverVersion = "1.0.0"
)

// Ranker runs one search-and-rank pass for a keyword.
type Ranker interface {
	Run(ctx context.Context, keyword string) ([]models.Item, error)
}

func newServer(ranker Ranker) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	registerTools(s, ranker)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(ranker Ranker) error {
	return server.ServeStdio(newServer(ranker))
}
