package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	wellmcp "github.com/ppiankov/wellwatch/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for assistant integration",
	Long: "Runs wellwatch as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes tools: wellwatch_analyze, wellwatch_conversation,\n" +
		"wellwatch_end_session. Audit and alerts follow the config file.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs go to stderr.
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(os.Stderr, "wellwatch MCP server running on stdio")
	return wellmcp.New(svc.guard, version).Run(ctx)
}
