package alert

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event AlertEvent) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event AlertEvent) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event AlertEvent) ([]byte, error) {
	categories := "none"
	if len(event.Categories) > 0 {
		categories = strings.Join(event.Categories, ", ")
	}

	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("wellwatch: %s", event.Type),
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Session:* %s", event.SessionID)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Level:* %s", levelLabel(event))},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Score:* %d", event.Score)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Categories:* %s", categories)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event AlertEvent) ([]byte, error) {
	payload := map[string]any{
		"event_action": "trigger",
		"dedup_key":    event.SessionID + ":" + event.Type,
		"payload": map[string]any{
			"summary":  fmt.Sprintf("wellwatch %s: session %s", event.Type, event.SessionID),
			"severity": severityFor(event),
			"source":   "wellwatch",
			"custom_details": map[string]any{
				"session_id": event.SessionID,
				"score":      event.Score,
				"tier":       event.Tier,
				"risk_level": event.RiskLevel,
				"categories": event.Categories,
				"locale":     event.Locale,
			},
		},
	}
	return json.Marshal(payload)
}

func levelLabel(event AlertEvent) string {
	if event.RiskLevel != "" {
		return event.RiskLevel
	}
	if event.Tier != "" {
		return event.Tier
	}
	return "unknown"
}

func severityFor(event AlertEvent) string {
	switch event.Type {
	case EventInterventionRequired, EventConversationCritical:
		return "critical"
	case EventConversationHigh:
		return "error"
	case EventCrisisDetected:
		return "warning"
	default:
		return "info"
	}
}
