package scorer

import (
	"strings"

	"github.com/ppiankov/wellwatch/internal/lexicon"
)

// Assessment is the verdict for a single message.
type Assessment struct {
	Score                int      `json:"score"`
	Tier                 Tier     `json:"tier"`
	RequiresIntervention bool     `json:"requires_intervention"`
	CrisisDetected       bool     `json:"crisis_detected"`
	MatchedCategories    []string `json:"matched_categories"`
	MatchedPhrases       []string `json:"matched_phrases"`
}

type compiledCategory struct {
	name    string
	weight  int
	phrases []string // lowercased
}

type compiledPattern struct {
	name    string
	phrases []string // lowercased
}

// Scorer holds lowercased copies of a lexicon. It is never mutated after
// New returns, so one Scorer may be shared by any number of goroutines.
type Scorer struct {
	critical []compiledCategory
	high     []compiledCategory
	moderate []compiledCategory
	patterns []compiledPattern
}

// New compiles a lexicon into a Scorer. The lexicon is copied; later
// changes to it do not affect the Scorer.
func New(l *lexicon.Lexicon) *Scorer {
	s := &Scorer{
		critical: compileCategories(l.BySeverity(lexicon.SeverityCritical)),
		high:     compileCategories(l.BySeverity(lexicon.SeverityHigh)),
		moderate: compileCategories(l.BySeverity(lexicon.SeverityModerate)),
	}
	for _, name := range lexicon.PatternNames {
		for _, p := range l.Patterns {
			if p.Name == name {
				s.patterns = append(s.patterns, compiledPattern{name: p.Name, phrases: lowerAll(p.Phrases)})
			}
		}
	}
	return s
}

// NewDefault creates a Scorer from the built-in lexicon.
func NewDefault() *Scorer {
	return New(lexicon.Default())
}

// Analyze scores one message. Any string, including empty or non-ASCII
// text, yields a valid Assessment.
func (s *Scorer) Analyze(text string) Assessment {
	normalized := strings.ToLower(text)
	a := Assessment{
		MatchedCategories: []string{},
		MatchedPhrases:    []string{},
	}
	score := 0

	// Critical: one addition at most, first match wins.
	if c, phrase, ok := firstMatch(s.critical, normalized); ok {
		score += c.weight
		a.CrisisDetected = true
		a.record(c.name, phrase)
	}

	// High: skipped once the critical threshold is reached.
	if score < CloudedMax {
		if c, phrase, ok := firstMatch(s.high, normalized); ok {
			score += c.weight
			a.record(c.name, phrase)
		}
	}

	// Moderate: every distinct phrase stacks.
	if score < ClearMax {
		seen := make(map[string]bool)
		for _, c := range s.moderate {
			for _, phrase := range c.phrases {
				if seen[phrase] || !strings.Contains(normalized, phrase) {
					continue
				}
				seen[phrase] = true
				score += c.weight
				a.record(c.name, phrase)
			}
		}
	}

	a.Score = clamp(score)
	a.Tier = TierFor(a.Score)
	a.RequiresIntervention = RequiresIntervention(a.Score)
	return a
}

func (a *Assessment) record(category, phrase string) {
	a.MatchedPhrases = append(a.MatchedPhrases, phrase)
	for _, c := range a.MatchedCategories {
		if c == category {
			return
		}
	}
	a.MatchedCategories = append(a.MatchedCategories, category)
}

func firstMatch(categories []compiledCategory, text string) (compiledCategory, string, bool) {
	for _, c := range categories {
		for _, phrase := range c.phrases {
			if strings.Contains(text, phrase) {
				return c, phrase, true
			}
		}
	}
	return compiledCategory{}, "", false
}

func compileCategories(categories []lexicon.Category) []compiledCategory {
	out := make([]compiledCategory, 0, len(categories))
	for _, c := range categories {
		out = append(out, compiledCategory{
			name:    c.Name,
			weight:  c.Weight,
			phrases: lowerAll(c.Phrases),
		})
	}
	return out
}

func lowerAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
