package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/wellwatch/internal/config"
	"github.com/ppiankov/wellwatch/internal/lexicon"
)

var (
	initPath  string
	initForce bool
)

func init() {
	for _, c := range []*cobra.Command{initConfigCmd, initLexiconCmd} {
		c.Flags().StringVar(&initPath, "path", "", "Output path (default under ~/.wellwatch)")
		c.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
		rootCmd.AddCommand(c)
	}
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a commented default config.yaml",
	Long:  "Writes the default service configuration to ~/.wellwatch/config.yaml\nor --path. An existing file is kept unless --force is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd, config.DefaultPath(), config.DefaultYAML())
	},
}

var initLexiconCmd = &cobra.Command{
	Use:   "init-lexicon",
	Short: "Write the built-in lexicon as an editable lexicon.yaml",
	Long:  "Writes the built-in phrase tables to ~/.wellwatch/lexicon.yaml or\n--path. A running server reloads the file when it changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd, lexicon.DefaultPath(), lexicon.DefaultYAML())
	},
}

func runInit(cmd *cobra.Command, defaultPath, content string) error {
	path := initPath
	if path == "" {
		path = defaultPath
	}
	if path == "" {
		return fmt.Errorf("cannot determine home directory; pass --path")
	}

	wrote, err := writeIfMissing(path, content)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if wrote {
		fmt.Fprintf(out, "Created %s\n", path)
	} else {
		fmt.Fprintf(out, "%s already exists (use --force to overwrite).\n", path)
	}
	return nil
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
