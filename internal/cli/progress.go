package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/autodoc/internal/indexer"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet          bool
	out            io.Writer
	logger         *logrus.Logger
	fileBar        *progressbar.ProgressBar
	totalFiles     int
	processedFiles int
}

// NewCLIProgressReporter creates a new CLI progress reporter writing bars and
// the summary to out.
func NewCLIProgressReporter(quiet bool, out io.Writer, logger *logrus.Logger) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:  quiet,
		out:    out,
		logger: logger,
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	c.logger.Debug("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	c.logger.WithField("files", files).Info("Discovered source files")
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.totalFiles = totalFiles
	c.processedFiles = 0

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Analyzing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.processedFiles++
		_ = c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *indexer.RunStats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		_ = c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Analysis complete: %d modules in %.1fs\n", stats.Modules, stats.DurationSeconds)
	fmt.Fprintf(c.out, "  Functions:   %d\n", stats.Functions)
	fmt.Fprintf(c.out, "  Classes:     %d (%d methods)\n", stats.Classes, stats.Methods)
	if stats.Diagnostics > 0 {
		fmt.Fprintf(c.out, "  Diagnostics: %d (see log)\n", stats.Diagnostics)
	}
}
