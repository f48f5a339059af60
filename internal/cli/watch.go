package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/autodoc/internal/indexer"
	"github.com/mvp-joe/autodoc/internal/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Regenerate the documentation model when Python files change",
	Long: `Watch performs an initial run, then watches the project for changes to
Python files. Each debounced batch of changes triggers a fresh run whose
output replaces the previous one. Unchanged files are served from an
in-memory parse cache.

Examples:
  # Watch the current directory
  autodoc watch

  # Watch with a custom output directory
  autodoc watch ./myproject -o build/api
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addProjectFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	return executeWatch(ctx, projectOptionsFromFlags(args), quietFlag, cmd.OutOrStdout())
}

// executeWatch blocks until ctx is cancelled. Run failures after the initial
// run are logged and watching continues.
func executeWatch(ctx context.Context, opts projectOptions, quiet bool, out io.Writer) error {
	p, err := loadProject(opts)
	if err != nil {
		return err
	}

	cache, err := indexer.NewParseCache(p.cfg.Watch.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to create parse cache: %w", err)
	}
	defer cache.Close()

	progress := NewCLIProgressReporter(quiet, out, logger)
	engine := p.engine(progress, indexer.WithCache(cache))

	if _, _, err := p.run(ctx, engine, progress); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("initial run failed: %w", err)
	}

	extensions := p.cfg.GetSourceExtensions()
	if len(extensions) == 0 {
		extensions = []string{".py"}
	}
	fw, err := watcher.NewFileWatcher([]string{p.discovery.Root()}, watcher.Options{
		Extensions: extensions,
		Debounce:   p.cfg.Debounce(),
		Ignore:     p.discovery.Ignored,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Stop()

	// A pending batch already covers later changes: every run rediscovers
	// the whole project.
	trigger := make(chan []string, 1)
	if err := fw.Start(ctx, func(files []string) {
		select {
		case trigger <- files:
		default:
		}
	}); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"root":        p.discovery.Root(),
		"debounce_ms": p.cfg.Watch.DebounceMs,
	}).Info("Watching for changes")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch mode stopped")
			return nil

		case files := <-trigger:
			fw.Pause()
			logger.WithField("changed", len(files)).Info("Changes detected, regenerating")
			if _, _, err := p.run(ctx, engine, progress); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.WithError(err).Error("run failed")
			}
			fw.Resume()
		}
	}
}
