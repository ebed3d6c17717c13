package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders run results as a pass/fail report. Failed cases list
// every assertion that did not hold.
func FormatText(results []*RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Checking %s...\n\n", plural(len(results), "scenario file"))

	var cases, passed, failedFiles int
	kinds := map[string]int{}

	for _, r := range results {
		cases += r.Total
		passed += r.Passed
		for _, c := range r.Cases {
			kinds[c.Kind]++
		}

		if r.Failed == 0 {
			fmt.Fprintf(&b, "  PASS  %s (%d/%d)\n", r.Name, r.Passed, r.Total)
			continue
		}
		failedFiles++
		fmt.Fprintf(&b, "  FAIL  %s (%d/%d)\n", r.Name, r.Passed, r.Total)
		for _, c := range r.Cases {
			if c.Passed {
				continue
			}
			label := c.Kind
			if c.Purpose != "" {
				label += ", " + c.Purpose
			}
			fmt.Fprintf(&b, "    FAIL  case %d (%s): %s\n", c.Index, label, strings.Join(c.Failures, "; "))
		}
	}

	fmt.Fprintf(&b, "\n%d of %d cases passed (%d message, %d conversation).",
		passed, cases, kinds[KindMessage], kinds[KindConversation])
	if failedFiles > 0 {
		fmt.Fprintf(&b, " %d of %d scenarios failed.", failedFiles, len(results))
	}
	b.WriteString("\n")

	return b.String()
}

// FormatJSON renders run results as JSON.
func FormatJSON(results []*RunResult) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data), nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
