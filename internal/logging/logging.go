// Package logging builds the logrus logger shared by the CLI and engine.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Format selects the log formatter.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configure a logger.
type Options struct {
	Verbose bool
	Format  string
	Output  io.Writer
}

// New creates a logger. Verbose switches the level from info to debug.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()
	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	}

	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	switch Format(strings.ToLower(opts.Format)) {
	case FormatText, "":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: text, json)", opts.Format)
	}

	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
