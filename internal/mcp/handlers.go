package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/wellwatch/internal/guard"
)

// AnalyzeInput defines parameters for the wellwatch_analyze tool.
type AnalyzeInput struct {
	Text      string `json:"text" jsonschema:"user-authored message text"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier; assigned when omitted"`
	Locale    string `json:"locale,omitempty" jsonschema:"BCP 47 locale for crisis resources (e.g. en-GB)"`
}

// ConversationInput defines parameters for the wellwatch_conversation tool.
type ConversationInput struct {
	Messages  []string `json:"messages" jsonschema:"user-authored messages in order; exclude assistant messages"`
	SessionID string   `json:"session_id,omitempty" jsonschema:"session identifier for the audit trail"`
	Locale    string   `json:"locale,omitempty" jsonschema:"BCP 47 locale for crisis resources"`
}

// EndSessionInput defines parameters for the wellwatch_end_session tool.
type EndSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"session to end"`
	Locale    string `json:"locale,omitempty" jsonschema:"BCP 47 locale for crisis resources"`
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcpsdk.CallToolRequest, input AnalyzeInput) (*mcpsdk.CallToolResult, guard.Verdict, error) {
	v := s.guard.CheckMessage(ctx, guard.Message{
		SessionID: input.SessionID,
		Text:      input.Text,
		Locale:    input.Locale,
	})
	return nil, v, nil
}

func (s *Server) handleConversation(ctx context.Context, req *mcpsdk.CallToolRequest, input ConversationInput) (*mcpsdk.CallToolResult, guard.Summary, error) {
	messages := input.Messages
	if messages == nil {
		messages = []string{}
	}
	return nil, s.guard.Conversation(ctx, input.SessionID, input.Locale, messages), nil
}

func (s *Server) handleEndSession(ctx context.Context, req *mcpsdk.CallToolRequest, input EndSessionInput) (*mcpsdk.CallToolResult, guard.Summary, error) {
	if input.SessionID == "" {
		return &mcpsdk.CallToolResult{
			IsError: true,
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "session_id is required"}},
		}, guard.Summary{}, nil
	}
	return nil, s.guard.EndSession(ctx, input.SessionID, input.Locale), nil
}
