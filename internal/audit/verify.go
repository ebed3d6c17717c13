package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// VerifyResult holds the outcome of a hash chain verification. LastHash is
// the hash the next entry must carry; publishing it elsewhere anchors the
// log against truncation.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	LastHash  string `json:"last_hash,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// Verify walks a JSONL audit log and reports the first broken link or
// repeated entry ID.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	expected := GenesisHash
	seen := make(map[string]int)

	fail := func(format string, args ...any) VerifyResult {
		return VerifyResult{Error: fmt.Sprintf(format, args...), ErrorLine: lineNum}
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		var entry AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return fail("parse error: %v", err)
		}

		if entry.PrevHash != expected {
			if lineNum == 1 {
				return fail("first entry prev_hash is %q, expected genesis hash", entry.PrevHash)
			}
			return fail("hash mismatch: expected %s, got %s", expected, entry.PrevHash)
		}
		if entry.ID != "" {
			if first, dup := seen[entry.ID]; dup {
				return fail("entry id %s repeats line %d", entry.ID, first)
			}
			seen[entry.ID] = lineNum
		}

		expected = HashLine(line)
	}

	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	return VerifyResult{Valid: true, Lines: lineNum, LastHash: expected}
}
