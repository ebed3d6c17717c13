package lexicon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity orders per-message categories. Scoring evaluates
// critical first, then high, then moderate.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
)

// Conversation pattern names. The conversation tier policy refers to
// these by name, so a lexicon may only define patterns from this set.
const (
	PatternHopelessness = "hopelessness"
	PatternIsolation    = "isolation"
	PatternSelfHarm     = "selfHarm"
	PatternSuicidal     = "suicidal"
)

// PatternNames lists the conversation patterns in reporting order.
var PatternNames = []string{PatternHopelessness, PatternIsolation, PatternSelfHarm, PatternSuicidal}

// Category is a named group of phrases sharing a severity and weight.
type Category struct {
	Name     string   `yaml:"name"`
	Severity Severity `yaml:"severity"`
	Weight   int      `yaml:"weight"`
	Phrases  []string `yaml:"phrases"`
}

// Pattern is a conversation-level phrase group. Patterns carry no weight:
// they are counted per message, not scored.
type Pattern struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

// Lexicon holds both keyword tables.
type Lexicon struct {
	Categories []Category `yaml:"categories"`
	Patterns   []Pattern  `yaml:"patterns"`
}

// Default returns a fresh copy of the built-in lexicon.
func Default() *Lexicon {
	l := &Lexicon{
		Categories: make([]Category, len(DefaultCategories)),
		Patterns:   make([]Pattern, len(DefaultPatterns)),
	}
	for i, c := range DefaultCategories {
		c.Phrases = append([]string(nil), c.Phrases...)
		l.Categories[i] = c
	}
	for i, p := range DefaultPatterns {
		p.Phrases = append([]string(nil), p.Phrases...)
		l.Patterns[i] = p
	}
	return l
}

// DefaultPath returns ~/.wellwatch/lexicon.yaml, or "" if the home
// directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wellwatch", "lexicon.yaml")
}

// Load reads a lexicon from a YAML file.
// Empty path falls back to ~/.wellwatch/lexicon.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func Load(path string) (*Lexicon, error) {
	l, _, err := LoadWithHash(path)
	return l, err
}

// LoadWithHash loads a lexicon and returns the SHA-256 of the raw bytes
// on disk. When no file exists the hash is that of empty input.
func LoadWithHash(path string) (*Lexicon, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return Default(), hashBytes(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), hashBytes(nil), nil
		}
		return nil, "", fmt.Errorf("lexicon: read %s: %w", path, err)
	}

	l, err := Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("lexicon: %s: %w", path, err)
	}
	return l, hashBytes(data), nil
}

// Parse decodes YAML over the defaults: a top-level key that is present
// replaces the built-in table of the same name, an absent key keeps it.
func Parse(data []byte) (*Lexicon, error) {
	l := Default()
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate rejects tables the scorer cannot interpret, and tables that
// leave a severity or a conversation pattern without phrases: either gap
// would make a crisis undetectable.
func (l *Lexicon) Validate() error {
	severities := make(map[Severity]bool, 3)
	for i, c := range l.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("category %d: missing name", i)
		}
		switch c.Severity {
		case SeverityCritical, SeverityHigh, SeverityModerate:
		default:
			return fmt.Errorf("category %q: unknown severity %q", c.Name, c.Severity)
		}
		if c.Weight < 0 {
			return fmt.Errorf("category %q: negative weight %d", c.Name, c.Weight)
		}
		if err := checkPhrases(c.Phrases); err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
		severities[c.Severity] = true
	}

	seen := make(map[string]bool, len(l.Patterns))
	for _, p := range l.Patterns {
		if !isPatternName(p.Name) {
			return fmt.Errorf("pattern %q: unknown name (want one of %s)", p.Name, strings.Join(PatternNames, ", "))
		}
		if seen[p.Name] {
			return fmt.Errorf("pattern %q: defined twice", p.Name)
		}
		seen[p.Name] = true
		if err := checkPhrases(p.Phrases); err != nil {
			return fmt.Errorf("pattern %q: %w", p.Name, err)
		}
	}

	for _, sev := range []Severity{SeverityCritical, SeverityHigh, SeverityModerate} {
		if !severities[sev] {
			return fmt.Errorf("no %s category", sev)
		}
	}
	for _, name := range PatternNames {
		if !seen[name] {
			return fmt.Errorf("pattern %q: missing", name)
		}
	}
	return nil
}

// BySeverity returns the categories of one severity in table order.
func (l *Lexicon) BySeverity(s Severity) []Category {
	var out []Category
	for _, c := range l.Categories {
		if c.Severity == s {
			out = append(out, c)
		}
	}
	return out
}

func checkPhrases(phrases []string) error {
	if len(phrases) == 0 {
		return fmt.Errorf("no phrases")
	}
	for i, p := range phrases {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("phrase %d is blank", i)
		}
	}
	return nil
}

func isPatternName(name string) bool {
	for _, n := range PatternNames {
		if n == name {
			return true
		}
	}
	return false
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}
