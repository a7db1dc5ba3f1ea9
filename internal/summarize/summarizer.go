package summarize

import (
	"context"
	"fmt"

	"pocketbook/internal/providers"
)

const sectionTemperature = 0.7

// Summarizer turns section text into structured chapter content through a
// completion client. One instance is shared by all chapter workers; it
// holds no mutable state.
type Summarizer struct {
	client   providers.CompletionClient
	parser   Parser
	language string
	detail   string // short | medium | long
	jsonMode bool
}

// New creates a Summarizer. parser selects the reply shape; the prompt is
// adjusted to instruct the model accordingly.
func New(client providers.CompletionClient, parser Parser, language, detail string) *Summarizer {
	_, jsonMode := parser.(JSONParser)
	return &Summarizer{
		client:   client,
		parser:   parser,
		language: language,
		detail:   detail,
		jsonMode: jsonMode,
	}
}

// SummarizeSection summarizes one token-bounded slice of a chapter,
// grounded by the chapter's plan section, and parses the reply.
func (s *Summarizer) SummarizeSection(ctx context.Context, text, planSection string) (*ChapterResult, error) {
	prompt := fmt.Sprintf(
		"Using the following summary plan, summarize the text below. Focus on key points, "+
			"important insights, technical terms, and main learnings. Include sections for "+
			"Citations and References, Additional Resources, and any other content that would "+
			"enrich the summary. Use a direct, note-taking style, and avoid phrases like "+
			"'the text discusses' or 'this chapter explains'. Do not include sections such as "+
			"dedications, forewords, or author biographies. The summary should be in %s, and "+
			"the level of detail should be %s.\n\n%s\n\nSummary Plan:\n%s\n\nText:\n%s",
		s.language, s.detail, s.formatInstruction(), planSection, text,
	)

	reply, err := s.client.Complete(ctx, []providers.Message{{Role: "user", Content: prompt}}, sectionTemperature)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(reply)
}

func (s *Summarizer) formatInstruction() string {
	if s.jsonMode {
		return "Reply with a single JSON object with keys \"summary\" (string) and, when " +
			"applicable, \"keywords\", \"glossary\", \"references\", \"additional_resources\" " +
			"(arrays of strings). No other keys, no surrounding prose."
	}
	return "Separate sections with blank lines. Start structured sections with the labels " +
		"\"Keywords:\" (comma-separated), \"Glossary:\", \"References:\", and " +
		"\"Additional Resources:\"; everything else is the narrative summary."
}
