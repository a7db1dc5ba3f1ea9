package pipeline

import (
	"context"
	"errors"
	"sync"

	"pocketbook/internal/chunker"
	"pocketbook/internal/providers"
	"pocketbook/internal/summarize"
)

// chapterOutcome is one worker's report for a single chapter.
type chapterOutcome struct {
	index           int
	result          *summarize.ChapterResult
	sectionsSkipped int
	err             error // non-nil aborts the whole book
}

// fanOut schedules the pending chapters across a bounded worker pool and
// returns the outcome channel. The channel is closed once every scheduled
// chapter has reported. Workers never touch the checkpoint; they only
// send outcomes.
func (p *Pipeline) fanOut(ctx context.Context, sum *summarize.Summarizer, chapters []string, planSections []string, pending []int) <-chan chapterOutcome {
	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(pending) {
		workers = len(pending)
	}

	ctx, cancel := context.WithCancel(ctx)
	jobs := make(chan int)
	outcomes := make(chan chapterOutcome)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out := p.processChapter(ctx, sum, chapters[idx], planSections, idx)
				outcomes <- out
				if out.err != nil {
					// Fail fast: stop feeding the pool once any
					// chapter hits a book-fatal error.
					cancel()
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, idx := range pending {
			select {
			case jobs <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		cancel()
		close(outcomes)
	}()

	return outcomes
}

// processChapter splits one chapter into token-bounded sections and
// summarizes them strictly in order, accumulating the structured fields.
// A section that exhausts its retry budget is dropped; the chapter still
// completes with the remaining sections' content.
func (p *Pipeline) processChapter(ctx context.Context, sum *summarize.Summarizer, text string, planSections []string, idx int) chapterOutcome {
	out := chapterOutcome{index: idx, result: &summarize.ChapterResult{}}

	sections, err := chunker.Split(text, p.cfg.SectionTokenLimit)
	if err != nil {
		out.err = err
		return out
	}
	plan := summarize.PlanSectionFor(planSections, idx)

	for si, section := range sections {
		parsed, err := p.summarizeSection(ctx, sum, section, plan, idx, si)
		if err != nil {
			if errors.Is(err, errSectionExhausted) {
				out.sectionsSkipped++
				continue
			}
			out.err = err
			return out
		}
		out.result.Append(parsed)
	}
	return out
}

// errSectionExhausted marks a section dropped after its attempt budget.
var errSectionExhausted = errors.New("section retry budget exhausted")

// summarizeSection calls the model for one section, retrying transient
// and malformed replies up to the configured attempt budget. Any other
// error (auth failure, strict-mode schema violation, cancellation)
// surfaces unchanged and aborts the book.
func (p *Pipeline) summarizeSection(ctx context.Context, sum *summarize.Summarizer, section, plan string, chapter, sectionIdx int) (*summarize.ChapterResult, error) {
	attempts := p.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		parsed, err := sum.SummarizeSection(ctx, section, plan)
		if err == nil {
			return parsed, nil
		}

		var parseErr *summarize.FatalParseError
		if errors.As(err, &parseErr) {
			return nil, err
		}
		if !providers.IsTransient(err) && !providers.IsMalformed(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		p.log.Warn("section attempt failed",
			"chapter", chapter,
			"section", sectionIdx,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err)
	}

	p.log.Warn("section skipped after exhausting retries",
		"chapter", chapter,
		"section", sectionIdx,
		"attempts", attempts,
		"error", lastErr)
	return nil, errSectionExhausted
}
