// Package output writes the resolved documentation model for external
// renderers.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/autodoc/internal/indexer"
	"github.com/mvp-joe/autodoc/internal/indexer/extraction"
)

// SchemaVersion identifies the layout of modules.json / modules.yaml.
const SchemaVersion = "1"

// File names written to the output directory.
const (
	ModulesJSON = "modules.json"
	ModulesYAML = "modules.yaml"
	StatsFile   = "stats.json"
)

// Format selects the encoding of the modules file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a configuration value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: json, yaml)", s)
	}
}

// Document is the hand-off to renderers: the non-empty resolved modules of
// one run.
type Document struct {
	Version     string                    `json:"version" yaml:"version"`
	Project     string                    `json:"project,omitempty" yaml:"project,omitempty"`
	RunID       string                    `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time                 `json:"generated_at" yaml:"generated_at"`
	Modules     []extraction.ModuleEntity `json:"modules" yaml:"modules"`
	Diagnostics []extraction.Diagnostic   `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewDocument builds the document for a run, dropping empty modules.
func NewDocument(project string, result *indexer.RunResult) *Document {
	return &Document{
		Version:     SchemaVersion,
		Project:     project,
		RunID:       result.Stats.RunID,
		GeneratedAt: result.Stats.StartedAt,
		Modules:     indexer.NonEmpty(result.Modules),
		Diagnostics: result.Diagnostics,
	}
}

// AtomicWriter handles atomic file writing using temp → rename pattern.
type AtomicWriter struct {
	outputDir string
	tempDir   string
}

// NewAtomicWriter creates a new atomic writer.
func NewAtomicWriter(outputDir string) (*AtomicWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Clean up stale temp files
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}

	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &AtomicWriter{
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// WriteModules writes the document in the given format and returns the
// path written.
func (w *AtomicWriter) WriteModules(doc *Document, format Format) (string, error) {
	var (
		data     []byte
		err      error
		filename string
		stale    string
	)
	switch format {
	case FormatYAML:
		filename, stale = ModulesYAML, ModulesJSON
		data, err = yaml.Marshal(doc)
	default:
		filename, stale = ModulesJSON, ModulesYAML
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal modules: %w", err)
	}

	if err := w.writeFile(filename, data); err != nil {
		return "", err
	}

	// A modules file in the other format is from an earlier run
	if err := os.Remove(filepath.Join(w.outputDir, stale)); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to remove stale %s: %w", stale, err)
	}
	return filepath.Join(w.outputDir, filename), nil
}

// WriteStats writes run statistics to stats.json.
func (w *AtomicWriter) WriteStats(stats *indexer.RunStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return w.writeFile(StatsFile, data)
}

func (w *AtomicWriter) writeFile(filename string, data []byte) error {
	tempPath := filepath.Join(w.tempDir, filename)
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename to final location (atomic operation)
	finalPath := filepath.Join(w.outputDir, filename)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ReadModules reads a previously written modules.json or modules.yaml.
func ReadModules(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modules file: %w", err)
	}

	var doc Document
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal modules file: %w", err)
	}
	return &doc, nil
}
