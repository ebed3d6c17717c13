package alert

// Event types a webhook can subscribe to.
const (
	EventCrisisDetected       = "crisis_detected"
	EventInterventionRequired = "intervention_required"
	EventConversationHigh     = "conversation_high"
	EventConversationCritical = "conversation_critical"
)

// AlertConfig defines a webhook alert destination, usually a human
// support queue.
type AlertConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["intervention_required", "conversation_critical"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// AlertEvent is the payload sent to webhook endpoints. It carries the
// verdict only; message text never leaves the process.
type AlertEvent struct {
	Timestamp   string   `json:"timestamp"`
	Type        string   `json:"type"`
	SessionID   string   `json:"session_id"`
	Score       int      `json:"score"`
	Tier        string   `json:"tier,omitempty"`
	RiskLevel   string   `json:"risk_level,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Locale      string   `json:"locale,omitempty"`
	LexiconHash string   `json:"lexicon_hash,omitempty"`
}

// KnownEvent reports whether name is an event type webhooks can match.
func KnownEvent(name string) bool {
	switch name {
	case EventCrisisDetected, EventInterventionRequired, EventConversationHigh, EventConversationCritical:
		return true
	}
	return false
}
