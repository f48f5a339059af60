package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/autodoc/internal/logging"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string

	// logger is built in PersistentPreRunE from --verbose and --log-format.
	logger = logging.Discard()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autodoc",
	Short: "autodoc - Python API documentation extractor",
	Long: `autodoc analyzes Python source files, decides which functions, classes and
methods belong in the documentation, and writes the resolved model
(modules.json or modules.yaml) for renderers.

Entities are selected by the @doc_me decorator, "# @doc_me" comments,
docstring markers, or the public-name fallback.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logging.Options{
			Verbose: verbose,
			Format:  logFormat,
			Output:  os.Stderr,
		})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is <project>/.autodoc/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}
