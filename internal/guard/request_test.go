package guard

import (
	"errors"
	"testing"

	"github.com/ppiankov/wellwatch/internal/scorer"
)

func TestMessageFromMap(t *testing.T) {
	msg, err := MessageFromMap(map[string]any{"text": "hi", "session_id": "s-1", "locale": "en-GB"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Text != "hi" || msg.SessionID != "s-1" || msg.Locale != "en-GB" {
		t.Errorf("unexpected message %+v", msg)
	}

	msg, err = MessageFromMap(map[string]any{"text": ""})
	if err != nil {
		t.Fatalf("empty text must be accepted: %v", err)
	}
	if msg.SessionID != "" {
		t.Errorf("expected empty session id, got %q", msg.SessionID)
	}
}

func TestMessageFromMapRejectsKinds(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]any
		field string
		got   string
	}{
		{"number text", map[string]any{"text": 42.0}, "text", "float64"},
		{"bool text", map[string]any{"text": true}, "text", "bool"},
		{"missing text", map[string]any{}, "text", "null"},
		{"list text", map[string]any{"text": []any{"a"}}, "text", "[]interface {}"},
		{"number session", map[string]any{"text": "hi", "session_id": 7.0}, "session_id", "float64"},
		{"object locale", map[string]any{"text": "hi", "locale": map[string]any{}}, "locale", "map[string]interface {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MessageFromMap(tt.body)
			if !errors.Is(err, scorer.ErrInvalidInputKind) {
				t.Fatalf("expected ErrInvalidInputKind, got %v", err)
			}
			var kindErr *scorer.InputKindError
			if !errors.As(err, &kindErr) {
				t.Fatalf("expected *InputKindError, got %T", err)
			}
			if kindErr.Field != tt.field || kindErr.Got != tt.got {
				t.Errorf("expected %s/%s, got %s/%s", tt.field, tt.got, kindErr.Field, kindErr.Got)
			}
		})
	}
}

func TestConversationFromMap(t *testing.T) {
	req, err := ConversationFromMap(map[string]any{"messages": []any{"a", "b"}, "session_id": "s-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Messages) != 2 || req.SessionID != "s-1" {
		t.Errorf("unexpected request %+v", req)
	}

	req, err = ConversationFromMap(map[string]any{})
	if err != nil {
		t.Fatalf("missing messages is an empty conversation: %v", err)
	}
	if len(req.Messages) != 0 {
		t.Errorf("expected no messages, got %v", req.Messages)
	}

	_, err = ConversationFromMap(map[string]any{"messages": []any{"ok", 3.0}})
	var kindErr *scorer.InputKindError
	if !errors.As(err, &kindErr) || kindErr.Field != "messages[1]" {
		t.Fatalf("expected messages[1] kind error, got %v", err)
	}

	if _, err := ConversationFromMap(map[string]any{"messages": "not a list"}); !errors.Is(err, scorer.ErrInvalidInputKind) {
		t.Fatalf("expected kind error for string messages, got %v", err)
	}
}
