package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/wellwatch/internal/guard"
)

// Server exposes the guard as MCP tools so an assistant host can score
// user messages before acting on them.
type Server struct {
	mcpServer *mcpsdk.Server
	guard     *guard.Guard
}

// New creates an MCP server over g.
func New(g *guard.Guard, version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{guard: g}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "wellwatch",
			Version: version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all wellwatch tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wellwatch_analyze",
		Description: "Score one user message for crisis risk. Returns the action (forward, tag, hold), the WBC score and tier, and crisis resources when intervention applies.",
	}, s.handleAnalyze)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wellwatch_conversation",
		Description: "Assess a list of user-authored messages for conversation-level risk (none, medium, high, critical).",
	}, s.handleConversation)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wellwatch_end_session",
		Description: "End a session: assess its recent messages, record the outcome and forget the session.",
	}, s.handleEndSession)
}
