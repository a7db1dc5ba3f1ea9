// Package summarize drives the plan-then-summarize protocol and parses
// model replies into structured chapter results.
package summarize

import "strings"

// ChapterResult is the structured output for one chapter, accumulated from
// its sections in document order.
type ChapterResult struct {
	Summary             string   `json:"summary"`
	Keywords            []string `json:"keywords,omitempty"`
	Glossary            []string `json:"glossary,omitempty"`
	References          []string `json:"references,omitempty"`
	AdditionalResources []string `json:"additional_resources,omitempty"`
}

// Append merges other into r, preserving section order.
func (r *ChapterResult) Append(other *ChapterResult) {
	if other == nil {
		return
	}
	if other.Summary != "" {
		if r.Summary != "" {
			r.Summary += "\n\n"
		}
		r.Summary += other.Summary
	}
	r.Keywords = append(r.Keywords, other.Keywords...)
	r.Glossary = append(r.Glossary, other.Glossary...)
	r.References = append(r.References, other.References...)
	r.AdditionalResources = append(r.AdditionalResources, other.AdditionalResources...)
}

// Empty reports whether the result carries no content at all.
func (r *ChapterResult) Empty() bool {
	return strings.TrimSpace(r.Summary) == "" &&
		len(r.Keywords) == 0 &&
		len(r.Glossary) == 0 &&
		len(r.References) == 0 &&
		len(r.AdditionalResources) == 0
}
