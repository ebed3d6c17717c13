package scorer

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/wellwatch/internal/lexicon"
)

func TestNoMatchIsClear(t *testing.T) {
	s := NewDefault()
	for _, text := range []string{
		"",
		"The weather is nice today",
		"I had pasta for lunch",
		"こんにちは、元気です",
		strings.Repeat("lorem ipsum ", 10_000),
	} {
		a := s.Analyze(text)
		if a.Score != 0 {
			t.Errorf("%.20q: expected score 0, got %d", text, a.Score)
		}
		if a.Tier != TierClear {
			t.Errorf("%.20q: expected clear, got %s", text, a.Tier)
		}
		if a.RequiresIntervention || a.CrisisDetected {
			t.Errorf("%.20q: expected no flags, got %+v", text, a)
		}
		if len(a.MatchedCategories) != 0 {
			t.Errorf("%.20q: expected no categories, got %v", text, a.MatchedCategories)
		}
	}
}

func TestCriticalPhrase(t *testing.T) {
	s := NewDefault()
	a := s.Analyze("I keep thinking about suicide")

	if a.Score < 50 {
		t.Errorf("expected score >= 50, got %d", a.Score)
	}
	if !a.CrisisDetected {
		t.Error("expected crisis detected")
	}
	if a.Tier == TierClear {
		t.Error("expected tier other than clear")
	}
	if diff := cmp.Diff([]string{"critical"}, a.MatchedCategories); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
}

func TestCriticalAddsOnce(t *testing.T) {
	s := NewDefault()
	a := s.Analyze("suicide. I want to die. I want to kill myself and end it all.")
	if a.Score != 50 {
		t.Errorf("expected a single critical addition (50), got %d", a.Score)
	}
	if len(a.MatchedPhrases) != 1 || a.MatchedPhrases[0] != "suicide" {
		t.Errorf("expected first critical phrase only, got %v", a.MatchedPhrases)
	}
}

func TestCriticalSkipsLowerSeverities(t *testing.T) {
	s := NewDefault()
	a := s.Analyze("I feel hopeless, anxious and sad, I want to die")
	if a.Score != 50 {
		t.Errorf("expected 50 (high and moderate skipped), got %d", a.Score)
	}
	if a.Tier != TierClouded {
		t.Errorf("expected clouded at 50, got %s", a.Tier)
	}
	if a.RequiresIntervention {
		t.Error("score 50 must not require intervention")
	}
}

func TestHighAddsOnceAndSkipsModerate(t *testing.T) {
	s := NewDefault()
	a := s.Analyze("I feel hopeless and worthless, also anxious and sad")
	if a.Score != 30 {
		t.Errorf("expected 30, got %d", a.Score)
	}
	if a.Tier != TierClouded {
		t.Errorf("expected clouded, got %s", a.Tier)
	}
	if a.CrisisDetected {
		t.Error("high-risk phrase must not set crisis flag")
	}
	if diff := cmp.Diff([]string{"high-risk"}, a.MatchedCategories); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
}

func TestModerateStacking(t *testing.T) {
	s := NewDefault()
	tests := []struct {
		text  string
		score int
		tier  Tier
	}{
		{"I'm anxious about tomorrow", 10, TierClear},
		{"I'm anxious and a bit sad", 20, TierClear},
		{"I'm anxious, sad and stressed", 30, TierClouded},
		{"ANXIOUS anxious Anxious", 10, TierClear},
	}
	for _, tt := range tests {
		a := s.Analyze(tt.text)
		if a.Score != tt.score {
			t.Errorf("%q: expected score %d, got %d", tt.text, tt.score, a.Score)
		}
		if a.Tier != tt.tier {
			t.Errorf("%q: expected tier %s, got %s", tt.text, tt.tier, a.Tier)
		}
	}
}

func TestModerateAloneCanRequireIntervention(t *testing.T) {
	s := NewDefault()
	a := s.Analyze("anxious sad depressed stressed lonely overwhelmed")
	if a.Score != 60 {
		t.Fatalf("expected 60, got %d", a.Score)
	}
	if a.Tier != TierCritical || !a.RequiresIntervention {
		t.Errorf("expected critical with intervention, got %+v", a)
	}
	if a.CrisisDetected {
		t.Error("moderate phrases must not set crisis flag")
	}
}

func TestScoreClampedTo100(t *testing.T) {
	s := NewDefault()
	all := strings.Join(lexicon.DefaultCategories[2].Phrases, " ")
	a := s.Analyze(all)
	if a.Score != 100 {
		t.Errorf("expected clamp to 100, got %d", a.Score)
	}

	a = s.Analyze(strings.Repeat("suicide kill myself ", 1000))
	if a.Score > 100 {
		t.Errorf("score exceeded 100: %d", a.Score)
	}
}

func TestDuplicateModeratePhraseCountsOnce(t *testing.T) {
	s := New(&lexicon.Lexicon{Categories: []lexicon.Category{
		{Name: "a", Severity: lexicon.SeverityModerate, Weight: 10, Phrases: []string{"tired"}},
		{Name: "b", Severity: lexicon.SeverityModerate, Weight: 10, Phrases: []string{"Tired"}},
	}})
	a := s.Analyze("so tired")
	if a.Score != 10 {
		t.Errorf("expected duplicate phrase to count once, got %d", a.Score)
	}
}

func TestCustomWeightsFollowThresholds(t *testing.T) {
	// A critical weight under 50 leaves room for the high check.
	s := New(&lexicon.Lexicon{Categories: []lexicon.Category{
		{Name: "crit", Severity: lexicon.SeverityCritical, Weight: 40, Phrases: []string{"red"}},
		{Name: "hi", Severity: lexicon.SeverityHigh, Weight: 30, Phrases: []string{"orange"}},
	}})
	a := s.Analyze("red orange")
	if a.Score != 70 {
		t.Errorf("expected 70, got %d", a.Score)
	}
	if !a.RequiresIntervention {
		t.Error("expected intervention above 50")
	}
}

func TestAnalyzeIsPure(t *testing.T) {
	s := NewDefault()
	text := "I'm anxious and hopeless"
	first := s.Analyze(text)
	second := s.Analyze(text)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated call differs (-first +second):\n%s", diff)
	}
}

func TestNewCopiesLexicon(t *testing.T) {
	l := lexicon.Default()
	s := New(l)
	l.Categories[0].Phrases[0] = "nothing"
	if !s.Analyze("suicide").CrisisDetected {
		t.Error("scorer observed mutation of its source lexicon")
	}
}

func TestConcurrentAnalyze(t *testing.T) {
	s := NewDefault()
	texts := []string{"hello", "anxious", "hopeless", "suicide", "anxious sad stressed"}
	want := make([]Assessment, len(texts))
	for i, text := range texts {
		want[i] = s.Analyze(text)
	}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				i := n % len(texts)
				if got := s.Analyze(texts[i]); got.Score != want[i].Score {
					t.Errorf("%q: expected %d, got %d", texts[i], want[i].Score, got.Score)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		score int
		tier  Tier
	}{
		{0, TierClear}, {20, TierClear}, {21, TierClouded},
		{50, TierClouded}, {51, TierCritical}, {100, TierCritical},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.tier {
			t.Errorf("TierFor(%d) = %s, want %s", tt.score, got, tt.tier)
		}
		if got := RequiresIntervention(tt.score); got != (tt.score > 50) {
			t.Errorf("RequiresIntervention(%d) = %v", tt.score, got)
		}
	}
}
