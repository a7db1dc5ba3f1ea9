// Package home lays out the per-book output directory.
package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ImagesDirName is the subdirectory for images extracted from the book.
	ImagesDirName = "images"

	// StateFileName is the resumability checkpoint file.
	StateFileName = "processing_state.json"

	// SummaryEpubName is the assembled pocket-book output.
	SummaryEpubName = "summary.epub"

	// TextDirName holds the plain chapter text extracted from the book.
	TextDirName = "text"

	// ChaptersDirName holds the per-chapter structured results.
	ChaptersDirName = "chapters"
)

// BookDir is the output directory for one book, named after its sanitized
// source file name.
type BookDir struct {
	path string
	name string
}

// ForBook derives the output directory for the book at sourcePath, rooted
// at outputRoot ("." if empty). The directory is named after the source
// file's sanitized stem; a stem that sanitizes to nothing is a fatal input
// error.
func ForBook(outputRoot, sourcePath string) (*BookDir, error) {
	if outputRoot == "" {
		outputRoot = "."
	}

	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	name := Sanitize(stem)
	if name == "" {
		return nil, fmt.Errorf("book name %q is empty or malformed after sanitizing", stem)
	}

	return &BookDir{path: filepath.Join(outputRoot, name), name: name}, nil
}

// Name returns the sanitized book name.
func (d *BookDir) Name() string { return d.name }

// Path returns the book's output directory.
func (d *BookDir) Path() string { return d.path }

// ImagesDir returns the directory extracted images are written to.
func (d *BookDir) ImagesDir() string { return filepath.Join(d.path, ImagesDirName) }

// TextDir returns the directory the extracted chapter text is written to.
func (d *BookDir) TextDir() string { return filepath.Join(d.path, TextDirName) }

// ChaptersDir returns the directory holding per-chapter result files.
func (d *BookDir) ChaptersDir() string { return filepath.Join(d.path, ChaptersDirName) }

// ChapterResultPath returns the durable result file for one chapter index.
func (d *BookDir) ChapterResultPath(i int) string {
	return filepath.Join(d.ChaptersDir(), fmt.Sprintf("chapter_%03d.json", i))
}

// ChapterTextPath returns the extracted plain-text file for one chapter index.
func (d *BookDir) ChapterTextPath(i int) string {
	return filepath.Join(d.TextDir(), fmt.Sprintf("chapter_%03d.txt", i))
}

// StatePath returns the checkpoint file path.
func (d *BookDir) StatePath() string { return filepath.Join(d.path, StateFileName) }

// SummaryPath returns the growing summary document path for the given
// output format tag.
func (d *BookDir) SummaryPath(format string) string {
	if format == "html" {
		return filepath.Join(d.path, "summary.html")
	}
	return filepath.Join(d.path, "summary.md")
}

// EpubPath returns the final summary ePub path.
func (d *BookDir) EpubPath() string { return filepath.Join(d.path, SummaryEpubName) }

// EnsureExists creates the book directory and its subdirectories.
func (d *BookDir) EnsureExists() error {
	for _, dir := range []string{d.ImagesDir(), d.TextDir(), d.ChaptersDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return nil
}

// Sanitize strips path separators and characters unsafe in file names,
// mirroring how the output directory is keyed to the document.
func Sanitize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20, r == 0x7f:
		case strings.ContainsRune(`/\:*?"<>|`, r):
		default:
			sb.WriteRune(r)
		}
	}
	return strings.Trim(strings.TrimSpace(sb.String()), ".")
}
