// Package output renders structured chapter results into the final
// summary document.
package output

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Formats accepted by NewRenderer.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Renderer formats titles, sections and appendices in one output format.
type Renderer struct {
	format string
	md     goldmark.Markdown
}

// NewRenderer returns a renderer for format (markdown or html).
func NewRenderer(format string) (*Renderer, error) {
	switch format {
	case FormatMarkdown, FormatHTML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want markdown or html)", format)
	}
	return &Renderer{
		format: format,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

// Format returns the renderer's output format tag.
func (r *Renderer) Format() string { return r.format }

// FormatTitle renders the document title.
func (r *Renderer) FormatTitle(title string) string {
	if r.format == FormatHTML {
		return fmt.Sprintf("<h1>%s</h1>\n\n", title)
	}
	return fmt.Sprintf("# %s\n\n", title)
}

// FormatSection renders one chapter section with its heading.
func (r *Renderer) FormatSection(title, body string) string {
	if r.format == FormatHTML {
		return fmt.Sprintf("<h2>%s</h2>\n\n%s\n", title, r.markdownToHTML(body))
	}
	return fmt.Sprintf("## %s\n\n%s\n", title, body)
}

// FormatGlossary renders the glossary appendix; empty input renders nothing.
func (r *Renderer) FormatGlossary(entries []string) string {
	return r.appendix("Glossary", entries, "\n\n")
}

// FormatReferences renders the references appendix.
func (r *Renderer) FormatReferences(entries []string) string {
	return r.appendix("References", entries, "\n")
}

// FormatAdditionalResources renders the additional-resources appendix.
func (r *Renderer) FormatAdditionalResources(entries []string) string {
	return r.appendix("Additional Resources", entries, "\n")
}

func (r *Renderer) appendix(title string, entries []string, sep string) string {
	if len(entries) == 0 {
		return ""
	}
	if r.format == FormatHTML {
		var sb strings.Builder
		fmt.Fprintf(&sb, "<h1>%s</h1>\n\n", title)
		for i, entry := range entries {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "<p>%s</p>", entry)
		}
		sb.WriteString("\n")
		return sb.String()
	}
	return fmt.Sprintf("# %s\n\n%s\n", title, strings.Join(entries, sep))
}

// HighlightKeywords bolds every keyword occurrence in the summary text.
func HighlightKeywords(summary string, keywords []string) string {
	highlighted := summary
	for _, keyword := range keywords {
		if strings.TrimSpace(keyword) == "" {
			continue
		}
		re := regexp.MustCompile(regexp.QuoteMeta(keyword))
		highlighted = re.ReplaceAllString(highlighted, "**"+keyword+"**")
	}
	return highlighted
}

func (r *Renderer) markdownToHTML(md string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(md), &buf); err != nil {
		// Conversion only fails on writer errors; bytes.Buffer has none.
		return md
	}
	return strings.TrimSpace(buf.String())
}
