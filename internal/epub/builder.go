package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// SummaryBook is the metadata for the generated pocket book.
type SummaryBook struct {
	Title    string
	Author   string
	Language string // ISO 639-1 code (e.g., "en")
}

// SummaryChapter is one chapter of the generated pocket book.
type SummaryChapter struct {
	ID    string // e.g., "ch_001"
	Title string
	Body  string // markdown
}

// Builder creates the summary ePub 3.0 file.
type Builder struct {
	book     SummaryBook
	chapters []SummaryChapter
	md       goldmark.Markdown
}

// NewBuilder creates a builder for the given book and chapters.
func NewBuilder(book SummaryBook, chapters []SummaryChapter) *Builder {
	return &Builder{
		book:     book,
		chapters: chapters,
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Build generates the epub and writes it to outputPath.
func (b *Builder) Build(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return b.WriteTo(f)
}

// WriteTo writes the epub to a writer.
func (b *Builder) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	if err := b.writeMimetype(zw); err != nil {
		return err
	}
	if err := b.writeContainer(zw); err != nil {
		return err
	}
	if err := writeEntry(zw, "OEBPS/content.opf", b.generatePackage()); err != nil {
		return err
	}
	if err := writeEntry(zw, "OEBPS/nav.xhtml", b.generateNavigation()); err != nil {
		return err
	}
	for i, ch := range b.chapters {
		name := fmt.Sprintf("OEBPS/chapters/%s.xhtml", ch.ID)
		xhtml, err := b.generateChapterXHTML(ch)
		if err != nil {
			return fmt.Errorf("failed to render chapter %d: %w", i, err)
		}
		if err := writeEntry(zw, name, xhtml); err != nil {
			return err
		}
	}
	return nil
}

// writeMimetype writes the mimetype file (must be first and uncompressed).
func (b *Builder) writeMimetype(zw *zip.Writer) error {
	header := &zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create mimetype: %w", err)
	}
	_, err = w.Write([]byte("application/epub+zip"))
	return err
}

func (b *Builder) writeContainer(zw *zip.Writer) error {
	return writeEntry(zw, "META-INF/container.xml", `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)
}

// generatePackage creates the content.opf package document.
func (b *Builder) generatePackage() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="pub-id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
`)
	fmt.Fprintf(&sb, "    <dc:identifier id=\"pub-id\">urn:uuid:%s</dc:identifier>\n", uuid.New())
	fmt.Fprintf(&sb, "    <dc:title>%s</dc:title>\n", escapeXML(b.book.Title))
	fmt.Fprintf(&sb, "    <dc:creator>%s</dc:creator>\n", escapeXML(b.book.Author))

	lang := b.book.Language
	if lang == "" {
		lang = "en"
	}
	fmt.Fprintf(&sb, "    <dc:language>%s</dc:language>\n", lang)
	fmt.Fprintf(&sb, "    <meta property=\"dcterms:modified\">%s</meta>\n",
		time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	sb.WriteString("  </metadata>\n\n  <manifest>\n")
	sb.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	for _, ch := range b.chapters {
		fmt.Fprintf(&sb, "    <item id=\"%s\" href=\"chapters/%s.xhtml\" media-type=\"application/xhtml+xml\"/>\n",
			ch.ID, ch.ID)
	}
	sb.WriteString("  </manifest>\n\n  <spine>\n")
	for _, ch := range b.chapters {
		fmt.Fprintf(&sb, "    <itemref idref=\"%s\"/>\n", ch.ID)
	}
	sb.WriteString("  </spine>\n</package>\n")

	return sb.String()
}

// generateNavigation creates the nav.xhtml navigation document.
func (b *Builder) generateNavigation() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>Table of Contents</title>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <h1>Table of Contents</h1>
    <ol>
`)
	for _, ch := range b.chapters {
		fmt.Fprintf(&sb, "      <li><a href=\"chapters/%s.xhtml\">%s</a></li>\n", ch.ID, escapeXML(ch.Title))
	}
	sb.WriteString(`    </ol>
  </nav>
</body>
</html>
`)
	return sb.String()
}

// generateChapterXHTML converts a chapter's markdown body to XHTML.
func (b *Builder) generateChapterXHTML(ch SummaryChapter) (string, error) {
	var body bytes.Buffer
	if err := b.md.Convert([]byte(ch.Body), &body); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>`)
	sb.WriteString(escapeXML(ch.Title))
	sb.WriteString(`</title>
</head>
<body>
`)
	sb.WriteString(body.String())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

func writeEntry(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	_, err = w.Write([]byte(content))
	return err
}

// escapeXML escapes special XML characters.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
