package scenario

// Expect holds the assertions for one case. Unset fields are not checked.
type Expect struct {
	Tier      string `yaml:"tier,omitempty"`
	Score     *int   `yaml:"score,omitempty"`
	Intervene *bool  `yaml:"intervene,omitempty"`
	Crisis    *bool  `yaml:"crisis,omitempty"`
	RiskLevel string `yaml:"risk_level,omitempty"`
	// Error names an expected rejection, e.g. "InvalidInputKind".
	Error string `yaml:"error,omitempty"`
}

// Case is one test case within a scenario. A case with messages is a
// conversation case; otherwise text is scored as a single message. Both
// hold the value as decoded, so a case can feed a number or a mixed list
// and expect the input to be rejected.
type Case struct {
	Text     any    `yaml:"text,omitempty"`
	Messages any    `yaml:"messages,omitempty"`
	Expect   Expect `yaml:"expect"`
	Purpose  string `yaml:"purpose,omitempty"`
}

// IsConversation reports whether the case scores a message list.
func (c Case) IsConversation() bool { return c.Messages != nil }

// Scenario is a named collection of scoring test cases. Lexicon, when set,
// names a lexicon file that replaces the caller's for this scenario.
type Scenario struct {
	Name    string `yaml:"name"`
	Lexicon string `yaml:"lexicon,omitempty"`
	Cases   []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int      `json:"index"`
	Passed   bool     `json:"passed"`
	Kind     string   `json:"kind"`
	Purpose  string   `json:"purpose,omitempty"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual"`
	Failures []string `json:"failures,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
