package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	ActionCrisisResourceView     = "CRISIS_RESOURCE_VIEW"
	ActionConversationEscalation = "CONVERSATION_ESCALATION"
	ActionSessionSummary         = "SESSION_SUMMARY"
)

// TimestampFormat is the layout used in audit entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// AuditDetails carries the verdict behind an audit action. Message text is
// never stored, only its digest.
type AuditDetails struct {
	Score        int      `json:"score"`
	Tier         string   `json:"tier,omitempty"`
	RiskLevel    string   `json:"risk_level,omitempty"`
	Categories   []string `json:"categories"`
	Intervention string   `json:"intervention,omitempty"`
	MessageHash  string   `json:"message_hash,omitempty"`
	Messages     int      `json:"messages,omitempty"`
	Locale       string   `json:"locale,omitempty"`
	LexiconHash  string   `json:"lexicon_hash,omitempty"`
}

// AuditEntry is one line in the hash-chained JSONL audit log.
// All fields are structs (no map[string]any) to guarantee deterministic
// json.Marshal field order for reproducible hashing.
type AuditEntry struct {
	Timestamp string       `json:"ts"`
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Action    string       `json:"action"`
	Details   AuditDetails `json:"details"`
	PrevHash  string       `json:"prev_hash"`
}

// NewEntry stamps an entry with a fresh ID and the current UTC time.
func NewEntry(sessionID, action string, details AuditDetails) AuditEntry {
	return AuditEntry{
		Timestamp: time.Now().UTC().Format(TimestampFormat),
		ID:        "a-" + uuid.NewString(),
		SessionID: sessionID,
		Action:    action,
		Details:   details,
	}
}

// MessageDigest returns "sha256:<hex>" of a message.
func MessageDigest(text string) string {
	return HashLine([]byte(text))
}

// HashLine returns "sha256:<hex>" of the given bytes.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}
