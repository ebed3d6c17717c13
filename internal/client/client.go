package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/wellwatch/internal/guard"
	"github.com/ppiankov/wellwatch/internal/scorer"
	"github.com/ppiankov/wellwatch/internal/server"
)

// DefaultTimeout bounds each RPC when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// Client connects to a wellwatch gRPC risk server.
type Client struct {
	conn     *grpc.ClientConn
	fallback *guard.Guard
}

// Option configures a Client.
type Option func(*Client)

// WithLocalFallback scores messages in-process with s when the server is
// unreachable, so the edge always gets a verdict. Local verdicts are not
// audited and keep their own session windows.
func WithLocalFallback(s *scorer.Scorer) Option {
	return func(c *Client) {
		c.fallback = guard.New(s, guard.Options{})
	}
}

// New creates a gRPC client for the given address.
func New(addr string, opts ...Option) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("client: connect to risk server: %w", err)
	}
	c := &Client{conn: conn}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Analyze scores one message on the server.
func (c *Client) Analyze(ctx context.Context, msg guard.Message) (guard.Verdict, error) {
	var v guard.Verdict
	err := c.call(ctx, server.MethodAnalyze, map[string]any{
		"text":       msg.Text,
		"session_id": msg.SessionID,
		"locale":     msg.Locale,
	}, &v)
	if err != nil && c.useFallback(err) {
		return c.fallback.CheckMessage(ctx, msg), nil
	}
	return v, err
}

// AnalyzeConversation scores a list of user messages on the server.
func (c *Client) AnalyzeConversation(ctx context.Context, sessionID, locale string, messages []string) (guard.Summary, error) {
	var s guard.Summary
	err := c.call(ctx, server.MethodAnalyzeConversation, map[string]any{
		"session_id": sessionID,
		"locale":     locale,
		"messages":   toList(messages),
	}, &s)
	if err != nil && c.useFallback(err) {
		return c.fallback.Conversation(ctx, sessionID, locale, messages), nil
	}
	return s, err
}

// EndSession asks the server to summarize and forget a session.
func (c *Client) EndSession(ctx context.Context, sessionID, locale string) (guard.Summary, error) {
	var s guard.Summary
	err := c.call(ctx, server.MethodEndSession, map[string]any{
		"session_id": sessionID,
		"locale":     locale,
	}, &s)
	if err != nil && c.useFallback(err) {
		return c.fallback.EndSession(ctx, sessionID, locale), nil
	}
	return s, err
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, body map[string]any, out any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	in, err := structpb.NewStruct(body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, in, resp); err != nil {
		return err
	}
	return server.FromStruct(resp, out)
}

// useFallback is true for transport failures, never for rejected input.
func (c *Client) useFallback(err error) bool {
	if c.fallback == nil {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	return false
}

func toList(messages []string) []any {
	out := make([]any, len(messages))
	for i, m := range messages {
		out[i] = m
	}
	return out
}
