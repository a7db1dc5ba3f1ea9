// Package pipeline orchestrates the resumable summarization run for one
// book: extract images and text, generate the summary plan, fan chapters
// out to bounded-concurrency workers, and assemble the output artifacts.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"pocketbook/internal/checkpoint"
	"pocketbook/internal/config"
	"pocketbook/internal/epub"
	"pocketbook/internal/home"
	"pocketbook/internal/output"
	"pocketbook/internal/providers"
	"pocketbook/internal/summarize"
)

// Pipeline processes books one at a time. The completion client is shared
// across books; all other state is scoped to a single ProcessBook call.
type Pipeline struct {
	cfg    config.Config
	client providers.CompletionClient
	log    *slog.Logger
}

// Report summarizes one book's run.
type Report struct {
	Book              string
	TotalChapters     int
	ChaptersCompleted int // completed during this run
	ChaptersResumed   int // already complete when the run started
	SectionsSkipped   int // sections dropped after exhausting their retry budget
}

// New creates a pipeline with the given configuration and completion client.
func New(cfg config.Config, client providers.CompletionClient, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{cfg: cfg, client: client, log: log}
}

// ProcessBook runs the full pipeline for one EPUB. Completed stages are
// skipped based on the book's checkpoint file, so an interrupted run picks
// up where it left off. A non-nil error means the book was aborted; the
// checkpoint stays at its last save and a re-run resumes from there.
func (p *Pipeline) ProcessBook(ctx context.Context, sourcePath string) (*Report, error) {
	dir, err := home.ForBook(p.cfg.OutputDir, sourcePath)
	if err != nil {
		return nil, err
	}
	if err := dir.EnsureExists(); err != nil {
		return nil, err
	}
	log := p.log.With("book", dir.Name())

	state, err := checkpoint.Load(dir.StatePath())
	if err != nil {
		return nil, err
	}

	if !state.ImagesExtracted {
		n, err := epub.ExtractImages(sourcePath, dir.ImagesDir())
		if err != nil {
			return nil, fmt.Errorf("extracting images: %w", err)
		}
		log.Info("images extracted", "count", n)
		state.ImagesExtracted = true
		if err := checkpoint.Save(dir.StatePath(), state); err != nil {
			return nil, err
		}
	}

	doc, err := epub.Read(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading book: %w", err)
	}

	if !state.TextExtracted {
		if err := writeChapterText(dir, doc.Chapters); err != nil {
			return nil, fmt.Errorf("writing chapter text: %w", err)
		}
		log.Info("chapter text extracted", "chapters", len(doc.Chapters))
		state.TextExtracted = true
		if err := checkpoint.Save(dir.StatePath(), state); err != nil {
			return nil, err
		}
	}

	total := len(doc.Chapters)
	if p.cfg.ChapterLimit > 0 && p.cfg.ChapterLimit < total {
		total = p.cfg.ChapterLimit
		log.Info("chapter limit applied", "limit", total, "available", len(doc.Chapters))
	}

	report := &Report{Book: dir.Name(), TotalChapters: total}
	var pending []int
	for i := 0; i < total; i++ {
		if state.ChapterDone(i) {
			report.ChaptersResumed++
			continue
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		if err := p.runChapters(ctx, log, dir, state, doc, pending, report); err != nil {
			return report, err
		}
	} else {
		log.Info("all chapters already processed")
	}

	if !state.EpubCreated {
		if err := p.assemble(log, dir, doc, total); err != nil {
			return report, fmt.Errorf("assembling output: %w", err)
		}
		state.EpubCreated = true
		if err := checkpoint.Save(dir.StatePath(), state); err != nil {
			return report, err
		}
	}

	log.Info("book complete",
		"chapters", report.TotalChapters,
		"completed", report.ChaptersCompleted,
		"resumed", report.ChaptersResumed,
		"sections_skipped", report.SectionsSkipped)
	return report, nil
}

// runChapters generates the summary plan and drives the chapter workers.
// The plan is never persisted; a resumed run regenerates it.
func (p *Pipeline) runChapters(ctx context.Context, log *slog.Logger, dir *home.BookDir, state *checkpoint.ProcessingState, doc *epub.Document, pending []int, report *Report) error {
	parser, err := summarize.NewParser(p.cfg.ParserMode)
	if err != nil {
		return err
	}
	sum := summarize.New(p.client, parser, p.cfg.Language, p.cfg.DetailLevel)

	plan, err := sum.GeneratePlan(ctx, doc.TOC)
	if err != nil {
		return fmt.Errorf("generating summary plan: %w", err)
	}
	planSections := summarize.SplitPlan(plan)
	if len(planSections) != len(doc.Chapters) {
		log.Warn("plan sections diverge from chapter count",
			"plan_sections", len(planSections), "chapters", len(doc.Chapters))
	}

	outcomes := p.fanOut(ctx, sum, doc.Chapters, planSections, pending)

	// Single-writer discipline: this loop is the only place the
	// checkpoint is mutated while workers are in flight.
	var fatal error
	for out := range outcomes {
		if out.err != nil {
			if fatal == nil {
				fatal = fmt.Errorf("chapter %d: %w", out.index, out.err)
			}
			continue
		}
		if err := writeChapterResult(dir.ChapterResultPath(out.index), out.result); err != nil {
			if fatal == nil {
				fatal = err
			}
			continue
		}
		state.MarkChapter(out.index)
		if err := checkpoint.Save(dir.StatePath(), state); err != nil {
			if fatal == nil {
				fatal = err
			}
			continue
		}
		report.ChaptersCompleted++
		report.SectionsSkipped += out.sectionsSkipped
		log.Info("chapter processed",
			"chapter", out.index,
			"done", report.ChaptersCompleted+report.ChaptersResumed,
			"total", report.TotalChapters)
	}
	return fatal
}

// assemble renders the per-chapter results, in chapter order, into the
// summary document and the summary ePub.
func (p *Pipeline) assemble(log *slog.Logger, dir *home.BookDir, doc *epub.Document, total int) error {
	renderer, err := output.NewRenderer(p.cfg.OutputFormat)
	if err != nil {
		return err
	}
	md, err := output.NewRenderer(output.FormatMarkdown)
	if err != nil {
		return err
	}

	parts := []string{renderer.FormatTitle(doc.Title)}
	var chapters []epub.SummaryChapter
	for i := 0; i < total; i++ {
		result, err := readChapterResult(dir.ChapterResultPath(i))
		if err != nil {
			return err
		}
		title := chapterTitle(doc.TOC, i)
		parts = append(parts, renderChapter(renderer, title, result))
		chapters = append(chapters, epub.SummaryChapter{
			ID:    fmt.Sprintf("ch_%03d", i+1),
			Title: title,
			Body:  renderChapterBody(md, result),
		})
	}

	summaryPath := dir.SummaryPath(p.cfg.OutputFormat)
	content := strings.Join(parts, "\n") + "\n"
	if err := os.WriteFile(summaryPath, []byte(content), 0o644); err != nil {
		return err
	}
	log.Info("summary written", "path", summaryPath)

	builder := epub.NewBuilder(epub.SummaryBook{
		Title:    doc.Title,
		Author:   doc.Author,
		Language: doc.Language,
	}, chapters)
	if err := builder.Build(dir.EpubPath()); err != nil {
		return err
	}
	log.Info("summary epub written", "path", dir.EpubPath())
	return nil
}

// renderChapter renders one chapter with its heading and appendices.
func renderChapter(r *output.Renderer, title string, result *summarize.ChapterResult) string {
	body := output.HighlightKeywords(result.Summary, result.Keywords)
	parts := []string{r.FormatSection(title, body)}
	for _, appendix := range []string{
		r.FormatGlossary(result.Glossary),
		r.FormatReferences(result.References),
		r.FormatAdditionalResources(result.AdditionalResources),
	} {
		if appendix != "" {
			parts = append(parts, appendix)
		}
	}
	return strings.Join(parts, "\n")
}

// renderChapterBody is renderChapter without the chapter heading; the ePub
// builder supplies its own per-chapter title.
func renderChapterBody(r *output.Renderer, result *summarize.ChapterResult) string {
	parts := []string{output.HighlightKeywords(result.Summary, result.Keywords)}
	for _, appendix := range []string{
		r.FormatGlossary(result.Glossary),
		r.FormatReferences(result.References),
		r.FormatAdditionalResources(result.AdditionalResources),
	} {
		if appendix != "" {
			parts = append(parts, appendix)
		}
	}
	return strings.Join(parts, "\n\n")
}

// chapterTitle prefers the navigation title and falls back to a number.
func chapterTitle(toc []string, i int) string {
	if i < len(toc) && strings.TrimSpace(toc[i]) != "" {
		return strings.TrimSpace(toc[i])
	}
	return fmt.Sprintf("Chapter %d", i+1)
}

func writeChapterText(dir *home.BookDir, chapters []string) error {
	for i, text := range chapters {
		if err := os.WriteFile(dir.ChapterTextPath(i), []byte(text), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// writeChapterResult persists one chapter's structured result. The chapter
// is only marked processed after this file is durably on disk.
func writeChapterResult(path string, result *summarize.ChapterResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readChapterResult(path string) (*summarize.ChapterResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chapter result: %w", err)
	}
	var result summarize.ChapterResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding chapter result %s: %w", path, err)
	}
	return &result, nil
}
