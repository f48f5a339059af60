package indexer

import (
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/autodoc/internal/indexer/extraction"
)

// RunStats summarizes one engine run. Counts cover included entities of
// non-empty modules.
type RunStats struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	FilesProcessed  int       `json:"files_processed"`
	Modules         int       `json:"modules"`
	Functions       int       `json:"functions"`
	Classes         int       `json:"classes"`
	Methods         int       `json:"methods"`
	Diagnostics     int       `json:"diagnostics"`
	CacheHits       int       `json:"cache_hits"`
}

func newRunStats(now time.Time) RunStats {
	return RunStats{RunID: uuid.New().String(), StartedAt: now}
}

// count adds one finalized module to the totals.
func (s *RunStats) count(mod extraction.ModuleEntity) {
	s.FilesProcessed++
	if mod.IsEmpty() {
		return
	}
	s.Modules++
	s.Functions += len(mod.Functions)
	s.Classes += len(mod.Classes)
	for _, cls := range mod.Classes {
		s.Methods += len(cls.Methods)
	}
}
