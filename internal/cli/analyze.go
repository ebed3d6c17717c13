package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wellwatch/internal/client"
	"github.com/ppiankov/wellwatch/internal/guard"
	"github.com/ppiankov/wellwatch/internal/lexicon"
	"github.com/ppiankov/wellwatch/internal/resources"
	"github.com/ppiankov/wellwatch/internal/scorer"
)

var (
	analyzeLexicon string
	analyzeLocale  string
	analyzeSession string
	analyzeRemote  string
	analyzeFormat  string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(conversationCmd)
	for _, c := range []*cobra.Command{analyzeCmd, conversationCmd} {
		c.Flags().StringVar(&analyzeLexicon, "lexicon", "", "Path to lexicon YAML (local scoring)")
		c.Flags().StringVar(&analyzeLocale, "locale", "", "Locale for crisis resources (e.g. en-GB)")
		c.Flags().StringVar(&analyzeSession, "session", "", "Session ID")
		c.Flags().StringVar(&analyzeRemote, "remote", "", "Score on a wellwatch gRPC server at this address, falling back to local scoring")
		c.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "Output format (text|json)")
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Score one message",
	Long: "Scores a message with the Well-Being Coefficient and prints the\n" +
		"verdict. Reads the message from stdin when no argument is given.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var conversationCmd = &cobra.Command{
	Use:   "conversation [file]",
	Short: "Assess a conversation, one user message per line",
	Long: "Counts hopelessness, isolation, self-harm and suicidal patterns across\n" +
		"a list of user messages and prints the risk level. Reads stdin when\n" +
		"no file is given. Blank lines are skipped.",
	Args: cobra.MaximumNArgs(1),
	RunE: runConversation,
}

func loadScorer(path string) (*scorer.Scorer, string, error) {
	lex, hash, err := lexicon.LoadWithHash(path)
	if err != nil {
		return nil, "", err
	}
	return scorer.New(lex), hash, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := messageArg(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	sc, hash, err := loadScorer(analyzeLexicon)
	if err != nil {
		return err
	}
	msg := guard.Message{SessionID: analyzeSession, Text: text, Locale: analyzeLocale}

	var v guard.Verdict
	if analyzeRemote != "" {
		c, err := client.New(analyzeRemote, client.WithLocalFallback(sc))
		if err != nil {
			return err
		}
		defer c.Close()
		if v, err = c.Analyze(context.Background(), msg); err != nil {
			return err
		}
	} else {
		v = guard.New(sc, guard.Options{LexiconHash: hash}).CheckMessage(context.Background(), msg)
	}

	out := cmd.OutOrStdout()
	if analyzeFormat == "json" {
		return writeJSON(out, v)
	}
	a := v.Assessment
	fmt.Fprintf(out, "Action: %s\n", strings.ToUpper(string(v.Action)))
	fmt.Fprintf(out, "Score:  %d (%s)\n", a.Score, a.Tier)
	if len(a.MatchedCategories) > 0 {
		fmt.Fprintf(out, "Matched: %s\n", strings.Join(a.MatchedCategories, ", "))
	}
	writeResources(out, v.Resources)
	return nil
}

func runConversation(cmd *cobra.Command, args []string) error {
	messages, err := readMessages(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	sc, hash, err := loadScorer(analyzeLexicon)
	if err != nil {
		return err
	}

	var s guard.Summary
	if analyzeRemote != "" {
		c, err := client.New(analyzeRemote, client.WithLocalFallback(sc))
		if err != nil {
			return err
		}
		defer c.Close()
		if s, err = c.AnalyzeConversation(context.Background(), analyzeSession, analyzeLocale, messages); err != nil {
			return err
		}
	} else {
		g := guard.New(sc, guard.Options{LexiconHash: hash})
		s = g.Conversation(context.Background(), analyzeSession, analyzeLocale, messages)
	}

	out := cmd.OutOrStdout()
	if analyzeFormat == "json" {
		return writeJSON(out, s)
	}
	a := s.Assessment
	fmt.Fprintf(out, "Risk level: %s (%d messages)\n", strings.ToUpper(string(a.RiskLevel)), a.Messages)
	if a.InterventionRequired {
		fmt.Fprintln(out, "Intervention required.")
	}
	for _, name := range lexicon.PatternNames {
		if n := a.Counts[name]; n > 0 {
			fmt.Fprintf(out, "  %-14s %d\n", name, n)
		}
	}
	writeResources(out, s.Resources)
	return nil
}

func messageArg(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func readMessages(stdin io.Reader, args []string) ([]string, error) {
	r := stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	messages := []string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			messages = append(messages, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	return messages, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func writeResources(w io.Writer, list []resources.Resource) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintln(w, "Crisis resources:")
	for _, r := range list {
		var contact []string
		if r.Phone != "" {
			contact = append(contact, "call "+r.Phone)
		}
		if r.Text != "" {
			contact = append(contact, "text "+r.Text)
		}
		if r.URL != "" {
			contact = append(contact, r.URL)
		}
		fmt.Fprintf(w, "  %s: %s\n", r.Name, strings.Join(contact, ", "))
	}
}
