package lexicon

// DefaultCategories is the per-message keyword table. Weights and phrases
// are relied on by downstream UI severity coloring; change with care.
var DefaultCategories = []Category{
	{
		Name:     "critical",
		Severity: SeverityCritical,
		Weight:   50,
		Phrases: []string{
			"suicide",
			"suicidal",
			"kill myself",
			"end my life",
			"take my own life",
			"want to die",
			"better off dead",
			"no reason to live",
			"end it all",
		},
	},
	{
		Name:     "high-risk",
		Severity: SeverityHigh,
		Weight:   30,
		Phrases: []string{
			"self harm",
			"self-harm",
			"hurt myself",
			"harm myself",
			"cut myself",
			"cutting myself",
			"hopeless",
			"worthless",
			"can't go on",
			"cannot go on",
			"no way out",
			"overdose",
		},
	},
	{
		Name:     "moderate",
		Severity: SeverityModerate,
		Weight:   10,
		Phrases: []string{
			"anxious",
			"sad",
			"depressed",
			"stressed",
			"lonely",
			"overwhelmed",
			"scared",
			"afraid",
			"panic",
			"crying",
			"exhausted",
			"can't sleep",
			"miserable",
		},
	},
}

// DefaultPatterns is the conversation-level pattern table. It is tuned
// separately from DefaultCategories and intentionally overlaps it.
var DefaultPatterns = []Pattern{
	{
		Name: PatternHopelessness,
		Phrases: []string{
			"hopeless",
			"give up",
			"giving up",
			"no point",
			"pointless",
			"no future",
			"never get better",
			"nothing will change",
		},
	},
	{
		Name: PatternIsolation,
		Phrases: []string{
			"alone",
			"lonely",
			"isolated",
			"nobody cares",
			"no one cares",
			"no friends",
			"nobody understands",
			"no one understands",
		},
	},
	{
		Name: PatternSelfHarm,
		Phrases: []string{
			"self harm",
			"self-harm",
			"hurt myself",
			"harm myself",
			"cut myself",
			"cutting myself",
			"burn myself",
		},
	},
	{
		Name: PatternSuicidal,
		Phrases: []string{
			"suicide",
			"suicidal",
			"kill myself",
			"end my life",
			"take my own life",
			"want to die",
			"better off dead",
			"end it all",
		},
	},
}

// DefaultYAML returns a commented lexicon file for init-lexicon.
func DefaultYAML() string {
	return `# wellwatch lexicon
# Generated by: wellwatch init-lexicon
#
# Matching is case-insensitive substring search. No stemming, no fuzzy
# matching: "sad" matches "sadness", "Sad" and "SAD".
#
# A top-level key present in this file replaces the built-in table of the
# same name. Remove a key to keep the built-in table.

# Per-message categories, evaluated in severity order:
#   critical: first matching phrase adds the weight once, sets crisis flag
#   high:     only if score < 50; first matching phrase adds the weight once
#   moderate: only if score < 20; every distinct matching phrase adds weight
# Score is clamped to 0..100.
#   score <= 20 -> clear, 21..50 -> clouded, > 50 -> critical (intervention)
categories:
  - name: critical
    severity: critical
    weight: 50
    phrases:
      - suicide
      - suicidal
      - kill myself
      - end my life
      - take my own life
      - want to die
      - better off dead
      - no reason to live
      - end it all
  - name: high-risk
    severity: high
    weight: 30
    phrases:
      - self harm
      - self-harm
      - hurt myself
      - harm myself
      - cut myself
      - cutting myself
      - hopeless
      - worthless
      - "can't go on"
      - cannot go on
      - no way out
      - overdose
  - name: moderate
    severity: moderate
    weight: 10
    phrases:
      - anxious
      - sad
      - depressed
      - stressed
      - lonely
      - overwhelmed
      - scared
      - afraid
      - panic
      - crying
      - exhausted
      - "can't sleep"
      - miserable

# Conversation patterns, counted once per message that contains any phrase.
#   suicidal > 0                       -> critical, intervention
#   selfHarm > 1 or hopelessness > 2   -> high, intervention
#   any other hit                      -> medium
# Names must be one of: hopelessness, isolation, selfHarm, suicidal.
patterns:
  - name: hopelessness
    phrases: [hopeless, give up, giving up, no point, pointless, no future, never get better, nothing will change]
  - name: isolation
    phrases: [alone, lonely, isolated, nobody cares, no one cares, no friends, nobody understands, no one understands]
  - name: selfHarm
    phrases: [self harm, self-harm, hurt myself, harm myself, cut myself, cutting myself, burn myself]
  - name: suicidal
    phrases: [suicide, suicidal, kill myself, end my life, take my own life, want to die, better off dead, end it all]
`
}
