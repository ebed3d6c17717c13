package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wellwatch/internal/audit"
)

var (
	tailLines     int
	recentDB      string
	recentLimit   int
	recentSession string
	replayLog     string
	replaySession string
	replayAction  string
	replayFrom    string
	replayTo      string
	replayFormat  string
)

// errChainInvalid makes audit verify exit 1 after printing the failure.
var errChainInvalid = errors.New("audit chain invalid")

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditCmd.AddCommand(auditRecentCmd)
	auditCmd.AddCommand(auditReplayCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show")
	auditRecentCmd.Flags().StringVar(&recentDB, "db", "", "Path to SQLite audit store (default from config)")
	auditRecentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 20, "Number of entries to show")
	auditRecentCmd.Flags().StringVar(&recentSession, "session", "", "Show all entries for one session")
	auditReplayCmd.Flags().StringVarP(&replayLog, "log", "l", "", "Path to audit log (default from config)")
	auditReplayCmd.Flags().StringVar(&replaySession, "session", "", "Session ID filter")
	auditReplayCmd.Flags().StringVar(&replayAction, "action", "", "Action filter (e.g. CONVERSATION_ESCALATION)")
	auditReplayCmd.Flags().StringVar(&replayFrom, "from", "", "Start time filter (RFC3339)")
	auditReplayCmd.Flags().StringVar(&replayTo, "to", "", "End time filter (RFC3339)")
	auditReplayCmd.Flags().StringVarP(&replayFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for verifying and inspecting the hash-chained audit log\nand the SQLite audit store.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify hash chain integrity of an audit log",
	Long:  "Walks the JSONL audit log and validates that every entry's prev_hash\nmatches the SHA-256 of the previous entry. Exits 0 if valid, 1 if tampered.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail <path>",
	Short: "Show recent audit log entries",
	Long:  "Reads the last N entries from the JSONL audit log and pretty-prints them.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditTail,
}

var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Query the SQLite audit store",
	Long:  "Lists the newest entries in the SQLite audit store, or every entry\nfor one session in order.",
	RunE:  runAuditRecent,
}

var auditReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay audit log entries as a timeline",
	Long:  "Reads the JSONL audit log, filters by session, action and time range,\nand renders a timeline with a summary.",
	RunE:  runAuditReplay,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(args[0])
	if result.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d entries verified\n", result.Lines)
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	return errChainInvalid
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	// Read all lines, keep last N
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}

	start := len(lines) - tailLines
	if start < 0 {
		start = 0
	}

	out := cmd.OutOrStdout()
	for _, line := range lines[start:] {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			fmt.Fprintln(out, line)
			continue
		}
		data, _ := json.MarshalIndent(entry, "", "  ")
		fmt.Fprintln(out, string(data))
	}

	return nil
}

func runAuditRecent(cmd *cobra.Command, args []string) error {
	path := recentDB
	if path == "" {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Audit.SQLitePath
	}
	if path == "" {
		return fmt.Errorf("no SQLite audit store configured: set audit.sqlite_path or pass --db")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("audit store: %w", err)
	}

	store, err := audit.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer store.Close()

	var entries []audit.AuditEntry
	if recentSession != "" {
		entries, err = store.BySession(recentSession)
	} else {
		entries, err = store.Latest(recentLimit)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries found.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), audit.FormatEntries(entries))
	return nil
}

func runAuditReplay(cmd *cobra.Command, args []string) error {
	path := replayLog
	if path == "" {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Audit.JSONLPath
	}

	filter := audit.ReplayFilter{SessionID: replaySession, Action: replayAction}
	if replayFrom != "" {
		from, err := time.Parse(time.RFC3339, replayFrom)
		if err != nil {
			return fmt.Errorf("invalid --from time %q: %w", replayFrom, err)
		}
		filter.From = from
	}
	if replayTo != "" {
		to, err := time.Parse(time.RFC3339, replayTo)
		if err != nil {
			return fmt.Errorf("invalid --to time %q: %w", replayTo, err)
		}
		filter.To = to
	}

	result, err := audit.Replay(path, filter)
	if err != nil {
		return err
	}

	switch replayFormat {
	case "json":
		data, err := audit.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), data)
	default:
		fmt.Fprint(cmd.OutOrStdout(), audit.FormatTimeline(result, replaySession))
	}
	return nil
}
