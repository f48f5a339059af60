package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/autodoc/internal/output"
)

var cleanQuietFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove generated modules and stats files",
	Long: `Clean removes modules.json, modules.yaml and stats.json from the output
directory. Other files in the directory are left alone.

The configuration file (.autodoc/config.yml) is preserved.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

func runClean(cmd *cobra.Command, args []string) error {
	opts := projectOptions{configFile: cfgFile}
	if len(args) > 0 {
		opts.path = args[0]
	}
	_, err := executeClean(opts, cleanQuietFlag, cmd.OutOrStdout())
	return err
}

// executeClean deletes the hand-off files and returns how many were removed.
func executeClean(opts projectOptions, quiet bool, out io.Writer) (int, error) {
	p, err := loadProject(opts)
	if err != nil {
		return 0, err
	}

	if _, err := os.Stat(p.outputDir); os.IsNotExist(err) {
		if !quiet {
			fmt.Fprintln(out, "No output found for this project")
		}
		return 0, nil
	}

	removed := 0
	for _, name := range []string{output.ModulesJSON, output.ModulesYAML, output.StatsFile} {
		err := os.Remove(filepath.Join(p.outputDir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed++
	}
	if err := os.RemoveAll(filepath.Join(p.outputDir, ".tmp")); err != nil {
		return removed, fmt.Errorf("failed to remove temp directory: %w", err)
	}

	if !quiet {
		fmt.Fprintf(out, "✓ Removed %d generated files from %s\n", removed, p.outputDir)
	}
	return removed, nil
}
