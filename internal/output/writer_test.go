package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/autodoc/internal/indexer"
	"github.com/mvp-joe/autodoc/internal/indexer/extraction"
)

// Test Plan for AtomicWriter:
// - NewDocument drops empty modules and carries run metadata
// - WriteModules writes modules.json and it reads back
// - WriteModules writes modules.yaml and it reads back
// - WriteStats writes stats.json with counts
// - No temp files are left behind
// - Switching format removes the modules file of the other format
// - ParseFormat accepts json/yaml/yml and rejects others

func sampleResult() *indexer.RunResult {
	return &indexer.RunResult{
		Modules: []extraction.ModuleEntity{
			{Name: "empty", Path: "empty.py"},
			{
				Name:    "core",
				Path:    "pkg/core.py",
				Imports: []string{"os"},
				Functions: []extraction.FunctionEntity{{
					Name:          "run",
					Qualified:     "run",
					Kind:          extraction.KindFunction,
					Signature:     "run(x: int = 1) -> None",
					Parameters:    []extraction.ParameterSpec{{Name: "x", Type: "int", Default: "1", Kind: extraction.ParamPositional}},
					Line:          3,
					Category:      "core",
					Priority:      2,
					CommentMarked: true,
				}},
			},
		},
		Stats: indexer.RunStats{
			RunID:     "run-1",
			StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Modules:   1,
			Functions: 1,
		},
	}
}

func TestNewDocument(t *testing.T) {
	t.Parallel()

	doc := NewDocument("demo", sampleResult())
	assert.Equal(t, SchemaVersion, doc.Version)
	assert.Equal(t, "demo", doc.Project)
	assert.Equal(t, "run-1", doc.RunID)
	require.Len(t, doc.Modules, 1)
	assert.Equal(t, "core", doc.Modules[0].Name)
}

func TestAtomicWriter_JSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewAtomicWriter(dir)
	require.NoError(t, err)

	doc := NewDocument("demo", sampleResult())
	path, err := w.WriteModules(doc, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ModulesJSON), path)

	got, err := ReadModules(path)
	require.NoError(t, err)
	require.Len(t, got.Modules, 1)
	fn := got.Modules[0].Functions[0]
	assert.Equal(t, "run(x: int = 1) -> None", fn.Signature)
	assert.Equal(t, "core", fn.Category)
	assert.Equal(t, 2, fn.Priority)
	assert.True(t, fn.CommentMarked)

	entries, err := os.ReadDir(filepath.Join(dir, ".tmp"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAtomicWriter_YAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewAtomicWriter(dir)
	require.NoError(t, err)

	path, err := w.WriteModules(NewDocument("demo", sampleResult()), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ModulesYAML), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "comment_marked: true")

	got, err := ReadModules(path)
	require.NoError(t, err)
	require.Len(t, got.Modules, 1)
	assert.Equal(t, "pkg/core.py", got.Modules[0].Path)
	assert.Equal(t, []string{"os"}, got.Modules[0].Imports)
}

func TestAtomicWriter_SwitchFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewAtomicWriter(dir)
	require.NoError(t, err)

	doc := NewDocument("demo", sampleResult())
	_, err = w.WriteModules(doc, FormatJSON)
	require.NoError(t, err)
	_, err = w.WriteModules(doc, FormatYAML)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, ModulesJSON))
	assert.FileExists(t, filepath.Join(dir, ModulesYAML))
}

func TestAtomicWriter_Stats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewAtomicWriter(dir)
	require.NoError(t, err)

	stats := sampleResult().Stats
	require.NoError(t, w.WriteStats(&stats))

	raw, err := os.ReadFile(filepath.Join(dir, StatsFile))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, float64(1), got["modules"])
	assert.Equal(t, float64(1), got["functions"])
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatJSON, "json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
