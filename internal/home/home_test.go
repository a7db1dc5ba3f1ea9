package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestForBook(t *testing.T) {
	t.Run("derives sanitized directory from source path", func(t *testing.T) {
		dir, err := ForBook("/out", "/books/My Book: A Story?.epub")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Name() != "My Book A Story" {
			t.Errorf("name = %q", dir.Name())
		}
		if dir.Path() != filepath.Join("/out", "My Book A Story") {
			t.Errorf("path = %q", dir.Path())
		}
		if filepath.Base(dir.StatePath()) != StateFileName {
			t.Errorf("state path = %q", dir.StatePath())
		}
		if filepath.Base(dir.ImagesDir()) != ImagesDirName {
			t.Errorf("images dir = %q", dir.ImagesDir())
		}
	})

	t.Run("summary path follows format", func(t *testing.T) {
		dir, err := ForBook("", "book.epub")
		if err != nil {
			t.Fatal(err)
		}
		if got := filepath.Base(dir.SummaryPath("markdown")); got != "summary.md" {
			t.Errorf("markdown summary = %q", got)
		}
		if got := filepath.Base(dir.SummaryPath("html")); got != "summary.html" {
			t.Errorf("html summary = %q", got)
		}
	})

	t.Run("unusable name is an error", func(t *testing.T) {
		if _, err := ForBook("", `???.epub`); err == nil {
			t.Error("expected error for name that sanitizes to nothing")
		}
	})
}

func TestEnsureExists(t *testing.T) {
	root := t.TempDir()
	dir, err := ForBook(root, "sample.epub")
	if err != nil {
		t.Fatal(err)
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, sub := range []string{dir.ImagesDir(), dir.TextDir(), dir.ChaptersDir()} {
		if _, err := os.Stat(sub); err != nil {
			t.Errorf("subdirectory not created: %v", err)
		}
	}
	if got := filepath.Base(dir.ChapterResultPath(7)); got != "chapter_007.json" {
		t.Errorf("chapter result path = %q", got)
	}
}
