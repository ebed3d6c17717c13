package client

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ppiankov/wellwatch/internal/guard"
	"github.com/ppiankov/wellwatch/internal/scorer"
	"github.com/ppiankov/wellwatch/internal/server"
)

// startTestServer creates a server and returns its address.
func startTestServer(t *testing.T) (string, *guard.Guard) {
	t.Helper()

	g := guard.New(scorer.NewDefault(), guard.Options{})
	srv := server.New(g, nil)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.ServeOn(lis)
	t.Cleanup(srv.GracefulStop)
	return lis.Addr().String(), g
}

func newClient(t *testing.T, addr string, opts ...Option) *Client {
	t.Helper()
	c, err := New(addr, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientAnalyze(t *testing.T) {
	addr, _ := startTestServer(t)
	c := newClient(t, addr)

	v, err := c.Analyze(context.Background(), guard.Message{SessionID: "s-1", Text: "I feel anxious and sad"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if v.Assessment.Score != 20 || v.Assessment.Tier != scorer.TierClear {
		t.Errorf("expected 20/clear, got %d/%s", v.Assessment.Score, v.Assessment.Tier)
	}
	if v.Action != guard.ActionForward {
		t.Errorf("expected forward, got %s", v.Action)
	}
	if len(v.Assessment.MatchedPhrases) != 2 {
		t.Errorf("expected 2 matched phrases, got %v", v.Assessment.MatchedPhrases)
	}
}

func TestClientConversationAndEndSession(t *testing.T) {
	addr, g := startTestServer(t)
	c := newClient(t, addr)
	ctx := context.Background()

	s, err := c.AnalyzeConversation(ctx, "", "", []string{"I want to kill myself"})
	if err != nil {
		t.Fatalf("AnalyzeConversation: %v", err)
	}
	if s.Assessment.RiskLevel != scorer.RiskCritical || !s.Assessment.InterventionRequired {
		t.Errorf("expected critical, got %+v", s.Assessment)
	}
	if s.Assessment.Counts["suicidal"] != 1 {
		t.Errorf("expected suicidal count 1, got %v", s.Assessment.Counts)
	}

	if _, err := c.Analyze(ctx, guard.Message{SessionID: "s-2", Text: "I feel hopeless"}); err != nil {
		t.Fatal(err)
	}
	end, err := c.EndSession(ctx, "s-2", "en-US")
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if !end.Ended || end.Assessment.RiskLevel != scorer.RiskMedium {
		t.Errorf("unexpected end summary %+v", end)
	}
	if g.Tracker().Len() != 0 {
		t.Error("expected server session removed")
	}
}

func TestClientEndSessionRequiresID(t *testing.T) {
	addr, _ := startTestServer(t)
	c := newClient(t, addr, WithLocalFallback(scorer.NewDefault()))

	_, err := c.EndSession(context.Background(), "", "")
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument (no fallback for bad input), got %v", err)
	}
}

func TestClientUnreachableWithoutFallback(t *testing.T) {
	c := newClient(t, "127.0.0.1:1")

	if _, err := c.Analyze(context.Background(), guard.Message{Text: "hello"}); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestClientUnreachableFallsBackLocally(t *testing.T) {
	c := newClient(t, "127.0.0.1:1", WithLocalFallback(scorer.NewDefault()))

	v, err := c.Analyze(context.Background(), guard.Message{SessionID: "s-1", Text: "thinking about suicide"})
	if err != nil {
		t.Fatalf("expected local verdict, got error %v", err)
	}
	if v.Action != guard.ActionTag || !v.Assessment.CrisisDetected {
		t.Errorf("unexpected local verdict %+v", v)
	}
	if len(v.Resources) == 0 {
		t.Error("expected crisis resources on local verdict")
	}
}
