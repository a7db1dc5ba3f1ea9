package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="pub-id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="img1" href="images/cover.png" media-type="image/png"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

const testNav = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body>
  <nav epub:type="toc">
    <ol>
      <li><a href="ch1.xhtml">First Chapter</a></li>
      <li><a href="ch2.xhtml">Second Chapter</a></li>
    </ol>
  </nav>
</body>
</html>`

// writeTestEpub assembles a minimal two-chapter EPUB on disk.
func writeTestEpub(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/content.opf":      testOPF,
		"OEBPS/nav.xhtml":        testNav,
		"OEBPS/ch1.xhtml": `<html><head><style>p{}</style></head><body>
<h1>First</h1>
<p>Alpha  text.</p>
</body></html>`,
		"OEBPS/ch2.xhtml": `<html><body>
<p>Beta text.</p>
<script>var x=1;</script>
</body></html>`,
		"OEBPS/images/cover.png": "\x89PNG fake bytes",
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	doc, err := Read(writeTestEpub(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Test Book" || doc.Author != "Test Author" || doc.Language != "en" {
		t.Errorf("metadata = %+v", doc)
	}
	if len(doc.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(doc.Chapters))
	}
	if doc.Chapters[0] != "First Alpha text." {
		t.Errorf("chapter 0 = %q", doc.Chapters[0])
	}
	if doc.Chapters[1] != "Beta text." {
		t.Errorf("chapter 1 = %q (script content must be stripped)", doc.Chapters[1])
	}
	if len(doc.TOC) != 2 || doc.TOC[0] != "First Chapter" || doc.TOC[1] != "Second Chapter" {
		t.Errorf("toc = %v", doc.TOC)
	}
}

func TestReadRejectsNonEpub(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.epub")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestExtractImages(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "images")
	count, err := ExtractImages(writeTestEpub(t), dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 image, got %d", count)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 file in %s, got %d", dest, len(entries))
	}
}
