package checkpoint

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns zero state", func(t *testing.T) {
		state, err := Load(filepath.Join(t.TempDir(), FileName))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.ImagesExtracted || state.TextExtracted || state.EpubCreated {
			t.Error("expected all flags false")
		}
		if len(state.ChaptersProcessed) != 0 {
			t.Error("expected no chapters processed")
		}
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), FileName)
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected error for corrupt state file")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	state := &ProcessingState{
		ImagesExtracted:   true,
		TextExtracted:     true,
		ChaptersProcessed: []int{0, 2},
	}

	if err := Save(path, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(state, loaded) {
		t.Errorf("loaded state %+v != saved %+v", loaded, state)
	}

	// Saving the same state twice is idempotent.
	if err := Save(path, state); err != nil {
		t.Fatalf("second save: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !reflect.DeepEqual(loaded, again) {
		t.Errorf("state changed across identical saves: %+v vs %+v", loaded, again)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := Save(path, &ProcessingState{TextExtracted: true}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		t.Errorf("expected only %s in dir, got %v", FileName, entries)
	}
}

func TestMarkChapter(t *testing.T) {
	var state ProcessingState
	state.MarkChapter(2)
	state.MarkChapter(0)
	state.MarkChapter(2)

	if !reflect.DeepEqual(state.ChaptersProcessed, []int{0, 2}) {
		t.Errorf("expected sorted unique indices, got %v", state.ChaptersProcessed)
	}
	if !state.ChapterDone(0) || !state.ChapterDone(2) {
		t.Error("marked chapters not reported done")
	}
	if state.ChapterDone(1) {
		t.Error("unmarked chapter reported done")
	}
}
