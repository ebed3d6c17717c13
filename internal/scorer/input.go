package scorer

import (
	"errors"
	"fmt"
)

// ErrInvalidInputKind is returned when a boundary value is not text.
var ErrInvalidInputKind = errors.New("invalid input kind")

// InputKindError describes a wrong-kind value received at a boundary.
type InputKindError struct {
	Field string // e.g. "text", "messages[2]"
	Got   string // Go type of the rejected value, "null" for nil
}

func (e *InputKindError) Error() string {
	return fmt.Sprintf("%s: %s must be a string, got %s", ErrInvalidInputKind, e.Field, e.Got)
}

func (e *InputKindError) Unwrap() error { return ErrInvalidInputKind }

// AnalyzeValue scores a decoded wire value. Only string and []byte are
// accepted; numbers, booleans, nil and containers are rejected.
func (s *Scorer) AnalyzeValue(v any) (Assessment, error) {
	text, err := TextValue("text", v)
	if err != nil {
		return Assessment{}, err
	}
	return s.Analyze(text), nil
}

// AnalyzeConversationValue runs AnalyzeConversation over a decoded wire
// value, which must be a list whose every element is text.
func (s *Scorer) AnalyzeConversationValue(v any) (ConversationAssessment, error) {
	messages, err := MessagesValue(v)
	if err != nil {
		return ConversationAssessment{}, err
	}
	return s.AnalyzeConversation(messages), nil
}

// MessagesValue converts a decoded list into message strings.
// A nil value is an empty conversation.
func MessagesValue(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			text, err := TextValue(fmt.Sprintf("messages[%d]", i), item)
			if err != nil {
				return nil, err
			}
			out = append(out, text)
		}
		return out, nil
	default:
		return nil, &InputKindError{Field: "messages", Got: kindOf(v)}
	}
}

// TextValue accepts a decoded wire value as message text. field names the
// value in the returned *InputKindError.
func TextValue(field string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", &InputKindError{Field: field, Got: kindOf(v)}
	}
}

func kindOf(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
