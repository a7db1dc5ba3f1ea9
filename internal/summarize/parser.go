package summarize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FatalParseError means a reply violated the schema the prompt instructed.
// In strict-JSON mode this aborts the whole document: continuing would
// silently drop structured fields the renderer depends on.
type FatalParseError struct {
	Reason string
	Raw    string
}

func (e *FatalParseError) Error() string {
	return fmt.Sprintf("reply violates expected schema: %s", e.Reason)
}

// Parser converts a raw model reply into a structured chapter result.
// Exactly one strategy is active per run, selected by configuration;
// the reply shape is never guessed.
type Parser interface {
	Parse(raw string) (*ChapterResult, error)
}

const chapterResultSchema = `{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"keywords": {"type": "array", "items": {"type": "string"}},
		"glossary": {"type": "array", "items": {"type": "string"}},
		"references": {"type": "array", "items": {"type": "string"}},
		"additional_resources": {"type": "array", "items": {"type": "string"}}
	}
}`

var compiledSchema = jsonschema.MustCompileString("chapter_result.json", chapterResultSchema)

// JSONParser expects the reply to be a single JSON object with optional
// keys summary, keywords, glossary, references, additional_resources.
type JSONParser struct{}

// Parse decodes and validates raw. Any decode or schema failure is a
// *FatalParseError.
func (JSONParser) Parse(raw string) (*ChapterResult, error) {
	trimmed := strings.TrimSpace(raw)
	// Models routinely wrap JSON in a markdown fence despite instructions.
	trimmed = stripCodeFence(trimmed)

	var generic any
	if err := json.Unmarshal([]byte(trimmed), &generic); err != nil {
		return nil, &FatalParseError{Reason: err.Error(), Raw: raw}
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return nil, &FatalParseError{Reason: err.Error(), Raw: raw}
	}

	var result ChapterResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return nil, &FatalParseError{Reason: err.Error(), Raw: raw}
	}
	return &result, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Labels that route a delimited block to a structured field.
const (
	labelKeywords      = "Keywords:"
	labelGlossary      = "Glossary:"
	labelReferences    = "References:"
	labelCitations     = "Citations and References:"
	labelAdditionalRes = "Additional Resources:"
)

// administrativeLabels open blocks that are dropped outright.
var administrativeLabels = []string{
	"Dedication",
	"Foreword",
	"About the Author",
	"Author Biography",
	"Preface",
	"Acknowledgments",
}

// DelimitedParser handles the free-text reply shape: blocks separated by
// blank lines, with a leading label routing each block to a field.
// Unlabeled blocks join the narrative summary; administrative blocks are
// dropped.
type DelimitedParser struct{}

// Parse never fails: a free-text reply always yields some result.
func (DelimitedParser) Parse(raw string) (*ChapterResult, error) {
	result := &ChapterResult{}
	var summary strings.Builder

	blocks := strings.Split(raw, "\n\n")
	for i := 0; i < len(blocks); i++ {
		block := blocks[i]
		switch {
		case strings.HasPrefix(block, labelKeywords):
			for _, kw := range strings.Split(strings.TrimPrefix(block, labelKeywords), ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					result.Keywords = append(result.Keywords, kw)
				}
			}
		case strings.HasPrefix(block, labelGlossary):
			result.Glossary = append(result.Glossary, strings.TrimSpace(strings.TrimPrefix(block, labelGlossary)))
		case strings.HasPrefix(block, labelCitations):
			result.References = append(result.References, strings.TrimSpace(strings.TrimPrefix(block, labelCitations)))
		case strings.HasPrefix(block, labelReferences):
			result.References = append(result.References, strings.TrimSpace(strings.TrimPrefix(block, labelReferences)))
		case strings.HasPrefix(block, labelAdditionalRes):
			result.AdditionalResources = append(result.AdditionalResources, strings.TrimSpace(strings.TrimPrefix(block, labelAdditionalRes)))
		case isAdministrative(block):
			// A bare administrative heading carries its body in the next
			// block; drop that too. A heading with inline body stands alone.
			if !strings.Contains(block, "\n") && i+1 < len(blocks) &&
				!hasRoutingLabel(blocks[i+1]) && !isAdministrative(blocks[i+1]) {
				i++
			}
			continue
		default:
			summary.WriteString(block)
			summary.WriteString("\n")
		}
	}

	result.Summary = strings.TrimSpace(summary.String())
	return result, nil
}

func hasRoutingLabel(block string) bool {
	for _, label := range []string{labelKeywords, labelGlossary, labelCitations, labelReferences, labelAdditionalRes} {
		if strings.HasPrefix(block, label) {
			return true
		}
	}
	return false
}

func isAdministrative(block string) bool {
	for _, label := range administrativeLabels {
		if strings.HasPrefix(block, label) {
			return true
		}
	}
	return false
}

// NewParser returns the strategy for mode ("json" or "delimited").
func NewParser(mode string) (Parser, error) {
	switch mode {
	case "json":
		return JSONParser{}, nil
	case "delimited":
		return DelimitedParser{}, nil
	default:
		return nil, fmt.Errorf("unknown parser mode %q (want json or delimited)", mode)
	}
}
