// Package epub reads EPUB containers and builds the summary ePub.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pocketbook/internal/home"
)

// Document is the extracted content of one EPUB.
type Document struct {
	Title    string
	Author   string
	Language string

	// Chapters holds plain text per spine item, HTML stripped, in
	// reading order.
	Chapters []string

	// TOC holds the navigation titles, one per navigable unit.
	TOC []string
}

type containerXML struct {
	RootFiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type packageOPF struct {
	Metadata struct {
		Title    string `xml:"title"`
		Creator  string `xml:"creator"`
		Language string `xml:"language"`
	} `xml:"metadata"`
	Manifest struct {
		Items []manifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		TocID    string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type manifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type ncxDoc struct {
	NavPoints []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxNavPoint struct {
	Label     string        `xml:"navLabel>text"`
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

// Read opens the EPUB at filePath and extracts chapter text and the table
// of contents. One blocking call per document.
func Read(filePath string) (*Document, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer zr.Close()

	opfPath, opf, err := readPackage(&zr.Reader)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Title:    opf.Metadata.Title,
		Author:   opf.Metadata.Creator,
		Language: opf.Metadata.Language,
	}

	opfDir := path.Dir(opfPath)
	manifest := make(map[string]manifestItem, len(opf.Manifest.Items))
	for _, item := range opf.Manifest.Items {
		manifest[item.ID] = item
	}

	for _, ref := range opf.Spine.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok {
			continue
		}
		if item.MediaType != "application/xhtml+xml" && item.MediaType != "text/html" {
			continue
		}
		raw, err := readZipFile(&zr.Reader, resolveHref(opfDir, item.Href))
		if err != nil {
			// Skip unreadable spine entries; the chapter slot stays so
			// indices remain stable.
			doc.Chapters = append(doc.Chapters, "")
			continue
		}
		doc.Chapters = append(doc.Chapters, htmlToText(raw))
	}

	doc.TOC = readTOC(&zr.Reader, opfDir, opf, manifest)

	if len(doc.Chapters) == 0 {
		return nil, errors.New("no chapters found in epub")
	}
	return doc, nil
}

// ExtractImages writes every image resource in the EPUB to destDir and
// returns how many were written.
func ExtractImages(filePath, destDir string) (int, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open epub: %w", err)
	}
	defer zr.Close()

	opfPath, opf, err := readPackage(&zr.Reader)
	if err != nil {
		return 0, err
	}
	opfDir := path.Dir(opfPath)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create images directory: %w", err)
	}

	count := 0
	for _, item := range opf.Manifest.Items {
		if !strings.HasPrefix(item.MediaType, "image/") {
			continue
		}
		data, err := readZipFile(&zr.Reader, resolveHref(opfDir, item.Href))
		if err != nil {
			continue
		}
		name := home.Sanitize(strings.ReplaceAll(item.Href, "/", "_"))
		if name == "" {
			name = item.ID
		}
		if err := os.WriteFile(path.Join(destDir, name), data, 0o644); err != nil {
			return count, fmt.Errorf("failed to write image %s: %w", name, err)
		}
		count++
	}
	return count, nil
}

// readPackage locates and parses the OPF package document.
func readPackage(zr *zip.Reader) (string, *packageOPF, error) {
	raw, err := readZipFile(zr, "META-INF/container.xml")
	if err != nil {
		return "", nil, errors.New("container.xml not found in epub")
	}

	var container containerXML
	if err := xml.Unmarshal(raw, &container); err != nil {
		return "", nil, fmt.Errorf("failed to parse container.xml: %w", err)
	}
	if len(container.RootFiles) == 0 {
		return "", nil, errors.New("no rootfile in container.xml")
	}

	opfPath := container.RootFiles[0].FullPath
	raw, err = readZipFile(zr, opfPath)
	if err != nil {
		return "", nil, fmt.Errorf("OPF file not found: %s", opfPath)
	}

	var opf packageOPF
	if err := xml.Unmarshal(raw, &opf); err != nil {
		return "", nil, fmt.Errorf("failed to parse OPF file: %w", err)
	}
	return opfPath, &opf, nil
}

// readTOC extracts navigation titles, preferring the EPUB 3 nav document
// and falling back to the NCX.
func readTOC(zr *zip.Reader, opfDir string, opf *packageOPF, manifest map[string]manifestItem) []string {
	for _, item := range opf.Manifest.Items {
		if strings.Contains(item.Properties, "nav") {
			if raw, err := readZipFile(zr, resolveHref(opfDir, item.Href)); err == nil {
				if toc := parseNavDoc(raw); len(toc) > 0 {
					return toc
				}
			}
		}
	}

	ncxID := opf.Spine.TocID
	for _, item := range opf.Manifest.Items {
		if item.ID == ncxID || item.MediaType == "application/x-dtbncx+xml" {
			if raw, err := readZipFile(zr, resolveHref(opfDir, item.Href)); err == nil {
				return parseNCX(raw)
			}
		}
	}
	return nil
}

func parseNavDoc(raw []byte) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil
	}

	// Prefer the nav element marked epub:type="toc"; fall back to the
	// first nav present.
	nav := doc.Find("nav").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("epub:type")
		return v == "toc"
	})
	if nav.Length() == 0 {
		nav = doc.Find("nav").First()
	}

	var toc []string
	nav.Find("li a").Each(func(_ int, a *goquery.Selection) {
		if title := strings.TrimSpace(a.Text()); title != "" {
			toc = append(toc, title)
		}
	})
	return toc
}

func parseNCX(raw []byte) []string {
	var ncx ncxDoc
	if err := xml.Unmarshal(raw, &ncx); err != nil {
		return nil
	}
	var toc []string
	var walk func(points []ncxNavPoint)
	walk = func(points []ncxNavPoint) {
		for _, p := range points {
			if title := strings.TrimSpace(p.Label); title != "" {
				toc = append(toc, title)
			}
			walk(p.NavPoints)
		}
	}
	walk(ncx.NavPoints)
	return toc
}

// htmlToText strips markup and normalizes whitespace.
func htmlToText(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%s not in archive", name)
}

// resolveHref joins a manifest href onto the OPF directory.
func resolveHref(opfDir, href string) string {
	if opfDir == "." || opfDir == "" {
		return href
	}
	return path.Join(opfDir, href)
}
