package guard

import (
	"github.com/ppiankov/wellwatch/internal/scorer"
)

// ConversationRequest is a decoded conversation or end-session call.
type ConversationRequest struct {
	SessionID string
	Locale    string
	Messages  []string
}

// MessageFromMap decodes a transport body ({"text", "session_id",
// "locale"}). "text" is required and must be a string; the other fields
// must be strings when present. Violations return *scorer.InputKindError.
func MessageFromMap(m map[string]any) (Message, error) {
	text, err := scorer.TextValue("text", m["text"])
	if err != nil {
		return Message{}, err
	}
	sessionID, err := optionalString(m, "session_id")
	if err != nil {
		return Message{}, err
	}
	locale, err := optionalString(m, "locale")
	if err != nil {
		return Message{}, err
	}
	return Message{SessionID: sessionID, Text: text, Locale: locale}, nil
}

// ConversationFromMap decodes {"messages", "session_id", "locale"}. A
// missing messages list is an empty conversation.
func ConversationFromMap(m map[string]any) (ConversationRequest, error) {
	messages, err := scorer.MessagesValue(m["messages"])
	if err != nil {
		return ConversationRequest{}, err
	}
	sessionID, err := optionalString(m, "session_id")
	if err != nil {
		return ConversationRequest{}, err
	}
	locale, err := optionalString(m, "locale")
	if err != nil {
		return ConversationRequest{}, err
	}
	return ConversationRequest{SessionID: sessionID, Locale: locale, Messages: messages}, nil
}

func optionalString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	return scorer.TextValue(key, v)
}
