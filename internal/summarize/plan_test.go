package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pocketbook/internal/providers"
)

func TestGeneratePlan(t *testing.T) {
	t.Run("embeds toc and language", func(t *testing.T) {
		mock := &providers.MockClient{
			Respond: func(messages []providers.Message, temperature float64) (string, error) {
				if len(messages) != 1 {
					t.Fatalf("expected 1 message, got %d", len(messages))
				}
				prompt := messages[0].Content
				if !strings.Contains(prompt, "Chapter One") || !strings.Contains(prompt, "Chapter Two") {
					t.Error("prompt missing table of contents entries")
				}
				if !strings.Contains(prompt, "note-taking style in en") {
					t.Error("prompt missing output language")
				}
				if temperature != 0.7 {
					t.Errorf("temperature = %v", temperature)
				}
				return "## Chapter One\nplan a\n## Chapter Two\nplan b", nil
			},
		}

		s := New(mock, DelimitedParser{}, "en", "medium")
		plan, err := s.GeneratePlan(context.Background(), []string{"Chapter One", "Chapter Two"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan == "" {
			t.Error("expected non-empty plan")
		}
	})

	t.Run("blank reply is ErrEmptyPlan", func(t *testing.T) {
		s := New(providers.NewMockClient("   \n\t"), DelimitedParser{}, "en", "short")
		_, err := s.GeneratePlan(context.Background(), []string{"Only Chapter"})
		if !errors.Is(err, ErrEmptyPlan) {
			t.Fatalf("expected ErrEmptyPlan, got %v", err)
		}
	})
}

func TestSplitPlan(t *testing.T) {
	t.Run("fewer headings than chapters", func(t *testing.T) {
		plan := "## First\ncover the intro\n\n## Second\ncover the middle"
		sections := SplitPlan(plan)
		if len(sections) != 2 {
			t.Fatalf("expected 2 plan sections, got %d", len(sections))
		}
		if !strings.HasPrefix(sections[0], "## First") {
			t.Errorf("section 0 = %q", sections[0])
		}
		// Third chapter has no heading: empty plan section, no error.
		if got := PlanSectionFor(sections, 2); got != "" {
			t.Errorf("expected empty plan section for chapter 2, got %q", got)
		}
		if got := PlanSectionFor(sections, 1); !strings.HasPrefix(got, "## Second") {
			t.Errorf("section 1 = %q", got)
		}
	})

	t.Run("preamble before first heading is discarded", func(t *testing.T) {
		sections := SplitPlan("Overall approach notes.\n## Only\nbody")
		if len(sections) != 1 {
			t.Fatalf("expected 1 section, got %d", len(sections))
		}
		if strings.Contains(sections[0], "Overall approach") {
			t.Errorf("preamble leaked into section: %q", sections[0])
		}
	})

	t.Run("no headings", func(t *testing.T) {
		if sections := SplitPlan("free text plan with no headings"); len(sections) != 0 {
			t.Errorf("expected no sections, got %v", sections)
		}
	})
}
