package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const separator = "──────────────────────────────────────────────────────────────────"

// FormatTimeline renders a ReplayResult as a human-readable text timeline.
// label names the selection in the header, e.g. a session ID.
func FormatTimeline(result *ReplayResult, label string) string {
	if label == "" {
		label = "all sessions"
	}
	if len(result.Entries) == 0 {
		return fmt.Sprintf("Audit: %s | No entries found.\n", label)
	}

	var b strings.Builder

	firstTime := formatDateRange(result.Summary.FirstTimestamp)
	lastTime := formatTimeOnly(result.Summary.LastTimestamp)
	fmt.Fprintf(&b, "Audit: %s | %s-%s UTC\n", label, firstTime, lastTime)
	b.WriteString(separator + "\n")
	b.WriteString(FormatEntries(result.Entries))
	b.WriteString(separator + "\n")
	b.WriteString(formatSummary(result.Summary))

	return b.String()
}

// FormatEntries renders one line per entry: time, action, session and the
// verdict that caused it.
func FormatEntries(entries []AuditEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%-10s %-24s %-24s %s\n",
			formatTimeOnly(e.Timestamp),
			e.Action,
			truncate(e.SessionID, 24),
			describeDetails(e.Details))
	}
	return b.String()
}

// FormatJSON renders a ReplayResult as indented JSON.
func FormatJSON(result *ReplayResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("audit: marshal replay result: %w", err)
	}
	return string(data), nil
}

func describeDetails(d AuditDetails) string {
	var parts []string
	if d.RiskLevel != "" {
		parts = append(parts, "risk="+d.RiskLevel)
	} else if d.Tier != "" {
		parts = append(parts, fmt.Sprintf("score=%d tier=%s", d.Score, d.Tier))
	}
	if d.Intervention != "" {
		parts = append(parts, "action="+d.Intervention)
	}
	if d.Messages > 0 {
		parts = append(parts, fmt.Sprintf("messages=%d", d.Messages))
	}
	if len(d.Categories) > 0 {
		parts = append(parts, "["+strings.Join(d.Categories, ",")+"]")
	}
	return strings.Join(parts, " ")
}

func formatDateRange(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeOnly(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func formatSummary(s ReplaySummary) string {
	parts := []string{}
	if s.CrisisViews > 0 {
		parts = append(parts, plural(s.CrisisViews, "crisis view", "crisis views"))
	}
	if s.Escalations > 0 {
		parts = append(parts, plural(s.Escalations, "escalation", "escalations"))
	}
	if s.Summaries > 0 {
		parts = append(parts, plural(s.Summaries, "summary", "summaries"))
	}
	return fmt.Sprintf("Summary: %s | Max score: %d\n", strings.Join(parts, ", "), s.MaxScore)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
