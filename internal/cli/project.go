package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/autodoc/internal/config"
	"github.com/mvp-joe/autodoc/internal/indexer"
	"github.com/mvp-joe/autodoc/internal/indexer/parsers"
	"github.com/mvp-joe/autodoc/internal/output"
)

// projectOptions are the command-line inputs shared by generate and watch.
// Zero values leave the configured setting alone.
type projectOptions struct {
	path                  string
	configFile            string
	output                string
	format                string
	includeAll            bool
	disableCommentMarkers bool
	exclude               []string
}

// project is a loaded configuration resolved against a project root.
type project struct {
	cfg       *config.Config
	discovery *indexer.FileDiscovery
	parser    parsers.Parser
	outputDir string
	format    output.Format
}

// resolveRoot returns the absolute project directory for a path argument.
func resolveRoot(path string) (string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		path = wd
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path %s is not a directory", abs)
	}
	return abs, nil
}

// loadProject loads configuration, applies flag overrides and validates the
// result. Any configuration problem is returned before a file is touched.
func loadProject(opts projectOptions) (*project, error) {
	root, err := resolveRoot(opts.path)
	if err != nil {
		return nil, err
	}

	cfg, err := config.NewLoader(root, opts.configFile).Load()
	if err != nil {
		return nil, err
	}

	if opts.output != "" {
		cfg.OutputPath = opts.output
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.includeAll {
		cfg.IncludeAll = true
	}
	if opts.disableCommentMarkers {
		cfg.EnableCommentMarkers = false
	}
	cfg.Paths.Ignore = append(cfg.Paths.Ignore, opts.exclude...)

	if err := config.Validate(cfg); err != nil {
		return nil, &config.ConfigurationError{Path: opts.configFile, Err: err}
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, &config.ConfigurationError{Path: opts.configFile, Err: err}
	}

	discovery, err := indexer.NewFileDiscovery(root, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return nil, &config.ConfigurationError{Path: opts.configFile, Err: err}
	}

	outputDir := cfg.OutputPath
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	return &project{
		cfg:       cfg,
		discovery: discovery,
		parser:    parsers.NewPythonParser(cfg.ParserOptions()),
		outputDir: outputDir,
		format:    format,
	}, nil
}

// engine builds an engine for the project with the given extras.
func (p *project) engine(progress indexer.ProgressReporter, extra ...indexer.EngineOption) *indexer.Engine {
	options := append([]indexer.EngineOption{
		indexer.WithLogger(logger),
		indexer.WithProgress(progress),
	}, extra...)
	return indexer.NewEngine(p.parser, p.cfg.PolicyOptions(), options...)
}

// run discovers files, runs the engine over them and writes the hand-off
// files. It returns the run result and the path of the modules file.
func (p *project) run(ctx context.Context, engine *indexer.Engine, progress indexer.ProgressReporter) (*indexer.RunResult, string, error) {
	progress.OnDiscoveryStart()
	files, err := p.discovery.DiscoverFiles()
	if err != nil {
		return nil, "", fmt.Errorf("failed to discover files: %w", err)
	}
	progress.OnDiscoveryComplete(len(files))

	result, err := engine.Run(ctx, files)
	if err != nil {
		return nil, "", err
	}

	writer, err := output.NewAtomicWriter(p.outputDir)
	if err != nil {
		return nil, "", err
	}
	path, err := writer.WriteModules(output.NewDocument(p.cfg.ProjectName, result), p.format)
	if err != nil {
		return nil, "", err
	}
	if err := writer.WriteStats(&result.Stats); err != nil {
		return nil, "", err
	}

	return result, path, nil
}
