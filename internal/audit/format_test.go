package audit

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatTimelineHeaderAndSummary(t *testing.T) {
	path := writeReplayLog(t)
	result, err := Replay(path, ReplayFilter{SessionID: "s-a"})
	if err != nil {
		t.Fatal(err)
	}

	out := FormatTimeline(result, "s-a")

	if !strings.Contains(out, "Audit: s-a | 2026-01-01 10:00:00-12:00:00 UTC") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "Summary: 1 crisis view, 1 escalation, 1 summary | Max score: 50") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestFormatEntriesColumns(t *testing.T) {
	out := FormatEntries([]AuditEntry{
		{Timestamp: "2026-01-01T10:00:00.000Z", SessionID: "s-1", Action: ActionCrisisResourceView,
			Details: AuditDetails{Score: 60, Tier: "critical", Intervention: "hold", Categories: []string{"moderate"}}},
		{Timestamp: "2026-01-01T10:01:00.000Z", SessionID: "s-1", Action: ActionConversationEscalation,
			Details: AuditDetails{RiskLevel: "high", Messages: 5}},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "score=60 tier=critical action=hold [moderate]") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "risk=high messages=5") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestFormatTimelineEmpty(t *testing.T) {
	out := FormatTimeline(&ReplayResult{}, "")
	if out != "Audit: all sessions | No entries found.\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestFormatJSONValid(t *testing.T) {
	path := writeReplayLog(t)
	result, err := Replay(path, ReplayFilter{})
	if err != nil {
		t.Fatal(err)
	}

	out, err := FormatJSON(result)
	if err != nil {
		t.Fatal(err)
	}
	var parsed ReplayResult
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Summary.Total != 4 {
		t.Errorf("expected 4 entries, got %d", parsed.Summary.Total)
	}
}
