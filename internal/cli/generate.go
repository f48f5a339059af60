package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/autodoc/internal/indexer"
)

var (
	genOutput                string
	genFormat                string
	genIncludeAll            bool
	genDisableCommentMarkers bool
	genExclude               []string
	quietFlag                bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Analyze a Python project and write the documentation model",
	Long: `Generate walks the project, extracts modules, functions, classes and methods,
resolves @doc_me markers and writes the selected entities to the output
directory as modules.json (or modules.yaml) plus stats.json.

Examples:
  # Analyze the current directory
  autodoc generate

  # Document everything, ignoring markers
  autodoc generate ./myproject --include-all

  # Write YAML to a custom directory, skipping tests
  autodoc generate -o site/api --format yaml --exclude "tests/**"
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addProjectFlags(generateCmd)
}

// addProjectFlags registers the flags shared by generate and watch.
func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "output directory (default from config, ./docs)")
	cmd.Flags().StringVar(&genFormat, "format", "", "modules file format: json or yaml")
	cmd.Flags().BoolVar(&genIncludeAll, "include-all", false, "include every entity regardless of markers")
	cmd.Flags().BoolVar(&genDisableCommentMarkers, "disable-comment-markers", false, "ignore # @doc_me comments and docstring markers")
	cmd.Flags().StringSliceVar(&genExclude, "exclude", nil, "additional ignore patterns (repeatable)")
	cmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress bars and non-error output")
}

func projectOptionsFromFlags(args []string) projectOptions {
	opts := projectOptions{
		configFile:            cfgFile,
		output:                genOutput,
		format:                genFormat,
		includeAll:            genIncludeAll,
		disableCommentMarkers: genDisableCommentMarkers,
		exclude:               genExclude,
	}
	if len(args) > 0 {
		opts.path = args[0]
	}
	return opts
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	_, err := executeGenerate(ctx, projectOptionsFromFlags(args), quietFlag, cmd.OutOrStdout())
	return err
}

// executeGenerate performs a single run and writes the hand-off files.
func executeGenerate(ctx context.Context, opts projectOptions, quiet bool, out io.Writer) (*indexer.RunResult, error) {
	p, err := loadProject(opts)
	if err != nil {
		return nil, err
	}

	progress := NewCLIProgressReporter(quiet, out, logger)
	result, path, err := p.run(ctx, p.engine(progress), progress)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generation cancelled")
		}
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if !quiet {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return result, nil
}
