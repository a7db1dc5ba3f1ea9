// Package checkpoint persists per-book processing state so an interrupted
// run can resume without repeating already-billed work.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileName is the state file written under each book's output directory.
const FileName = "processing_state.json"

// ProcessingState records which pipeline stages have completed for one book.
// Chapter indices are 0-based and stable across runs.
type ProcessingState struct {
	ImagesExtracted   bool  `json:"images_extracted"`
	TextExtracted     bool  `json:"text_extracted"`
	ChaptersProcessed []int `json:"chapters_processed"`
	EpubCreated       bool  `json:"epub_created"`
}

// ChapterDone reports whether chapter index i has already been processed.
func (s *ProcessingState) ChapterDone(i int) bool {
	for _, done := range s.ChaptersProcessed {
		if done == i {
			return true
		}
	}
	return false
}

// MarkChapter records chapter index i as processed. Duplicate marks are
// no-ops; the slice is kept sorted so saved state is canonical.
func (s *ProcessingState) MarkChapter(i int) {
	if s.ChapterDone(i) {
		return
	}
	s.ChaptersProcessed = append(s.ChaptersProcessed, i)
	sort.Ints(s.ChaptersProcessed)
}

// Load reads the state file at path. A missing file is not an error: it
// returns a zero state, the starting point for a fresh run.
func Load(path string) (*ProcessingState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProcessingState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state ProcessingState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return &state, nil
}

// Save writes state to path atomically: a reader either sees the previous
// complete state or the new one, never a partial write.
func Save(path string, state *ProcessingState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
