package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/wellwatch/internal/lexicon"
	"github.com/ppiankov/wellwatch/internal/scorer"
)

// Case kinds reported in results.
const (
	KindMessage      = "message"
	KindConversation = "conversation"
)

// Run evaluates all cases in a scenario against the given scorer.
// Cases are independent; conversation cases do not share a window.
func Run(s *Scenario, sc *scorer.Scorer) *RunResult {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		var cr CaseResult
		if c.IsConversation() {
			cr = runConversation(sc, c)
		} else {
			cr = runMessage(sc, c)
		}
		cr.Index = i + 1
		cr.Purpose = c.Purpose
		cr.Passed = len(cr.Failures) == 0

		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result
}

func runMessage(sc *scorer.Scorer, c Case) CaseResult {
	e := c.Expect
	a, err := sc.AnalyzeValue(c.Text)
	if err != nil || e.Error != "" {
		return rejected(KindMessage, e, err)
	}
	var fs failures

	if e.Tier != "" {
		fs.check("tier", strings.ToLower(e.Tier), string(a.Tier))
	}
	if e.Score != nil {
		fs.check("score", strconv.Itoa(*e.Score), strconv.Itoa(a.Score))
	}
	if e.Intervene != nil {
		fs.check("intervene", strconv.FormatBool(*e.Intervene), strconv.FormatBool(a.RequiresIntervention))
	}
	if e.Crisis != nil {
		fs.check("crisis", strconv.FormatBool(*e.Crisis), strconv.FormatBool(a.CrisisDetected))
	}
	if e.RiskLevel != "" {
		fs = append(fs, "risk_level applies to conversation cases only")
	}

	return CaseResult{
		Kind:     KindMessage,
		Expected: describeExpect(e),
		Actual: fmt.Sprintf("tier=%s score=%d intervene=%t crisis=%t",
			a.Tier, a.Score, a.RequiresIntervention, a.CrisisDetected),
		Failures: fs,
	}
}

func runConversation(sc *scorer.Scorer, c Case) CaseResult {
	e := c.Expect
	ca, err := sc.AnalyzeConversationValue(c.Messages)
	if err != nil || e.Error != "" {
		return rejected(KindConversation, e, err)
	}
	var fs failures

	if e.RiskLevel != "" {
		fs.check("risk_level", strings.ToLower(e.RiskLevel), string(ca.RiskLevel))
	}
	if e.Intervene != nil {
		fs.check("intervene", strconv.FormatBool(*e.Intervene), strconv.FormatBool(ca.InterventionRequired))
	}
	if e.Tier != "" || e.Score != nil || e.Crisis != nil {
		fs = append(fs, "tier, score and crisis apply to message cases only")
	}

	return CaseResult{
		Kind:     KindConversation,
		Expected: describeExpect(e),
		Actual:   fmt.Sprintf("risk_level=%s intervene=%t", ca.RiskLevel, ca.InterventionRequired),
		Failures: fs,
	}
}

// rejected reports a case whose input was refused, or whose expected
// refusal did not happen.
func rejected(kind string, e Expect, err error) CaseResult {
	cr := CaseResult{Kind: kind, Expected: describeExpect(e), Actual: "accepted"}
	if err != nil {
		cr.Actual = "error=" + errorName(err)
	}
	switch {
	case e.Error == "":
		cr.Failures = []string{"input rejected: " + err.Error()}
	case err == nil:
		cr.Failures = []string{fmt.Sprintf("error: expected %s, input was accepted", e.Error)}
	case errorName(err) != e.Error:
		cr.Failures = []string{fmt.Sprintf("error: expected %s, got %s", e.Error, errorName(err))}
	}
	return cr
}

func errorName(err error) string {
	if errors.Is(err, scorer.ErrInvalidInputKind) {
		return "InvalidInputKind"
	}
	return err.Error()
}

type failures []string

func (f *failures) check(field, want, got string) {
	if want != got {
		*f = append(*f, fmt.Sprintf("%s: expected %s, got %s", field, want, got))
	}
}

func describeExpect(e Expect) string {
	var parts []string
	if e.RiskLevel != "" {
		parts = append(parts, "risk_level="+strings.ToLower(e.RiskLevel))
	}
	if e.Tier != "" {
		parts = append(parts, "tier="+strings.ToLower(e.Tier))
	}
	if e.Score != nil {
		parts = append(parts, "score="+strconv.Itoa(*e.Score))
	}
	if e.Intervene != nil {
		parts = append(parts, "intervene="+strconv.FormatBool(*e.Intervene))
	}
	if e.Crisis != nil {
		parts = append(parts, "crisis="+strconv.FormatBool(*e.Crisis))
	}
	if e.Error != "" {
		parts = append(parts, "error="+e.Error)
	}
	if len(parts) == 0 {
		return "(nothing)"
	}
	return strings.Join(parts, " ")
}

// LoadAndRun loads a scenario YAML file and runs it against sc. A scenario
// that names its own lexicon is scored with that lexicon instead; relative
// paths resolve against the scenario file's directory.
func LoadAndRun(path string, sc *scorer.Scorer) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(s.Cases) == 0 {
		return nil, fmt.Errorf("scenario %s has no cases", path)
	}

	if s.Lexicon != "" {
		lexPath := s.Lexicon
		if !filepath.IsAbs(lexPath) {
			lexPath = filepath.Join(filepath.Dir(path), lexPath)
		}
		lex, err := lexicon.Load(lexPath)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", path, err)
		}
		sc = scorer.New(lex)
	}
	if sc == nil {
		sc = scorer.NewDefault()
	}

	result := Run(&s, sc)
	result.File = path

	return result, nil
}
