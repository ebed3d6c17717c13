package scorer

import (
	"strings"

	"github.com/ppiankov/wellwatch/internal/lexicon"
)

// RiskLevel is the end-of-session verdict produced by AnalyzeConversation.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ConversationAssessment summarizes pattern hits across a conversation.
// Counts holds, per pattern, the number of messages that matched it.
type ConversationAssessment struct {
	RiskLevel            RiskLevel      `json:"risk_level"`
	InterventionRequired bool           `json:"intervention_required"`
	TriggeredCategories  []string       `json:"triggered_categories"`
	Counts               map[string]int `json:"counts"`
	Messages             int            `json:"messages"`
}

// AnalyzeConversation counts pattern hits over user-authored messages and
// applies a threshold-on-count policy. It is deliberately independent of
// Analyze: different tables, no weights, no score.
func (s *Scorer) AnalyzeConversation(messages []string) ConversationAssessment {
	counts := make(map[string]int, len(lexicon.PatternNames))
	for _, name := range lexicon.PatternNames {
		counts[name] = 0
	}

	for _, msg := range messages {
		normalized := strings.ToLower(msg)
		for _, p := range s.patterns {
			for _, phrase := range p.phrases {
				if strings.Contains(normalized, phrase) {
					counts[p.name]++
					break
				}
			}
		}
	}

	ca := ConversationAssessment{
		TriggeredCategories: []string{},
		Counts:              counts,
		Messages:            len(messages),
	}
	for _, name := range lexicon.PatternNames {
		if counts[name] > 0 {
			ca.TriggeredCategories = append(ca.TriggeredCategories, name)
		}
	}

	switch {
	case counts[lexicon.PatternSuicidal] > 0:
		ca.RiskLevel = RiskCritical
		ca.InterventionRequired = true
	case counts[lexicon.PatternSelfHarm] > 1 || counts[lexicon.PatternHopelessness] > 2:
		ca.RiskLevel = RiskHigh
		ca.InterventionRequired = true
	case len(ca.TriggeredCategories) > 0:
		ca.RiskLevel = RiskMedium
	default:
		ca.RiskLevel = RiskNone
	}
	return ca
}
