package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/autodoc/internal/indexer/extraction"
	"github.com/mvp-joe/autodoc/internal/indexer/parsers"
	"github.com/mvp-joe/autodoc/internal/logging"
	"github.com/mvp-joe/autodoc/internal/policy"
)

// RunResult is the output of one engine run. Modules follow input file
// order and include empty modules; callers filter with NonEmpty.
type RunResult struct {
	Modules     []extraction.ModuleEntity
	Diagnostics []extraction.Diagnostic
	Stats       RunStats
}

// Engine turns an ordered list of source files into resolved modules. Files
// are processed one at a time to completion.
type Engine struct {
	parser   parsers.Parser
	policy   policy.Options
	cache    *ParseCache
	logger   *logrus.Logger
	progress ProgressReporter
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache reuses raw parse results across runs.
func WithCache(cache *ParseCache) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(logger *logrus.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithProgress sets the progress reporter.
func WithProgress(progress ProgressReporter) EngineOption {
	return func(e *Engine) { e.progress = progress }
}

// NewEngine creates an engine around a parser and inclusion options.
func NewEngine(parser parsers.Parser, opts policy.Options, options ...EngineOption) *Engine {
	e := &Engine{
		parser:   parser,
		policy:   opts,
		progress: &NoOpProgressReporter{},
		now:      time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	return e
}

// Run processes files in order. The context is checked between files only;
// a cancelled run is abandoned whole and returns ctx.Err() with no result.
// A failing file never aborts the run.
func (e *Engine) Run(ctx context.Context, files []string) (*RunResult, error) {
	start := e.now()
	result := &RunResult{
		Modules:     make([]extraction.ModuleEntity, 0, len(files)),
		Diagnostics: []extraction.Diagnostic{},
		Stats:       newRunStats(start),
	}
	log := e.logger.WithField("run_id", result.Stats.RunID)

	log.WithField("files", len(files)).Debug("run started")
	e.progress.OnFileProcessingStart(len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Info("run abandoned")
			return nil, err
		}

		mod, diags, cached := e.parseFile(file)
		for _, d := range diags {
			log.WithFields(logrus.Fields{
				"file":  d.File,
				"line":  d.Line,
				"kind":  d.Kind,
				"error": d.Message,
			}).Warn("diagnostic")
		}

		result.Modules = append(result.Modules, mod)
		result.Diagnostics = append(result.Diagnostics, diags...)
		result.Stats.count(mod)
		if cached {
			result.Stats.CacheHits++
		}
		e.progress.OnFileProcessed(file)
	}

	result.Stats.Diagnostics = len(result.Diagnostics)
	result.Stats.DurationSeconds = e.now().Sub(start).Seconds()
	e.progress.OnComplete(&result.Stats)

	log.WithFields(logrus.Fields{
		"modules":     result.Stats.Modules,
		"functions":   result.Stats.Functions,
		"classes":     result.Stats.Classes,
		"diagnostics": result.Stats.Diagnostics,
	}).Info("run complete")

	return result, nil
}

// ParseFile reads, extracts and finalizes one file. Read and structural
// failures produce an empty module plus a diagnostic.
func (e *Engine) ParseFile(path string) (extraction.ModuleEntity, []extraction.Diagnostic) {
	mod, diags, _ := e.parseFile(path)
	return mod, diags
}

func (e *Engine) parseFile(path string) (extraction.ModuleEntity, []extraction.Diagnostic, bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		return parsers.EmptyModule(path), []extraction.Diagnostic{{
			File:    path,
			Kind:    extraction.DiagRead,
			Message: fmt.Sprintf("failed to read file: %v", err),
		}}, false
	}

	raw, cached, err := e.extract(path, source)
	if err != nil {
		diag := extraction.Diagnostic{File: path, Kind: extraction.DiagStructuralParse, Message: err.Error()}
		var perr *parsers.StructuralParseError
		if errors.As(err, &perr) {
			diag.Line = perr.Line
			diag.Message = perr.Msg
		}
		return parsers.EmptyModule(path), []extraction.Diagnostic{diag}, false
	}

	mod := policy.Finalize(raw.Module, raw.Marks, e.policy)
	diags := append([]extraction.Diagnostic(nil), raw.Diagnostics...)
	return mod, diags, cached
}

func (e *Engine) extract(path string, source []byte) (*parsers.Result, bool, error) {
	if e.cache == nil {
		res, err := e.parser.ParseSource(path, source)
		return res, false, err
	}

	key := e.cache.Key(path, source)
	if res, ok := e.cache.Get(key); ok {
		return res, true, nil
	}
	res, err := e.parser.ParseSource(path, source)
	if err != nil {
		return nil, false, err
	}
	e.cache.Set(key, res)
	return res, false, nil
}

// NonEmpty returns the modules that kept at least one function or class.
func NonEmpty(modules []extraction.ModuleEntity) []extraction.ModuleEntity {
	out := make([]extraction.ModuleEntity, 0, len(modules))
	for _, m := range modules {
		if !m.IsEmpty() {
			out = append(out, m)
		}
	}
	return out
}
