package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pocketbook/internal/providers"
)

// ErrEmptyPlan means the model returned a blank summary plan. Fatal to the
// run: without a plan there is no grounding for chapter work.
var ErrEmptyPlan = errors.New("model returned an empty summary plan")

const planTemperature = 0.7

// GeneratePlan asks the model for one free-text summary plan covering the
// whole table of contents. It runs exactly once per book, before any
// chapter work starts.
func (s *Summarizer) GeneratePlan(ctx context.Context, toc []string) (string, error) {
	prompt := fmt.Sprintf(
		"You are an expert at creating detailed and content-rich summary plans for e-books. "+
			"Based on the following table of contents, create a comprehensive summary plan that "+
			"focuses on the main content and key learnings of each chapter. Start each chapter's "+
			"part of the plan with a level-2 markdown heading (## <chapter title>). Exclude any "+
			"sections like dedications, forewords, author biographies, or any meta-information. "+
			"Include sections for Citations and References, Additional Resources, and any other "+
			"content that would enrich the summary. Use a direct, note-taking style in %s.\n\n"+
			"Table of Contents:\n%s",
		s.language, strings.Join(toc, "\n"),
	)

	plan, err := s.client.Complete(ctx, []providers.Message{{Role: "user", Content: prompt}}, planTemperature)
	if err != nil {
		return "", fmt.Errorf("plan generation failed: %w", err)
	}
	if strings.TrimSpace(plan) == "" {
		return "", ErrEmptyPlan
	}
	return plan, nil
}

// SplitPlan partitions a plan into per-chapter sections by its level-2
// headings. Section i is intended for chapter index i; alignment is
// positional, so callers should log when counts diverge.
func SplitPlan(plan string) []string {
	var parts []string
	for i, part := range strings.Split("\n"+plan, "\n## ") {
		if i == 0 {
			// Preamble before the first heading belongs to no chapter.
			continue
		}
		parts = append(parts, "## "+strings.TrimSpace(part))
	}
	return parts
}

// PlanSectionFor returns the plan section for chapter index i. A chapter
// beyond the last heading gets an empty plan section; summarization still
// proceeds, just without plan grounding. Policy, not an error.
func PlanSectionFor(sections []string, i int) string {
	if i < 0 || i >= len(sections) {
		return ""
	}
	return sections[i]
}
