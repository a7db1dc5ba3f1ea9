// Package chunker splits chapter text into token-bounded sections.
//
// The tokenizer is Unicode word segmentation (UAX #29). Segments partition
// the input exactly, so concatenating a chapter's sections reconstructs the
// original text byte for byte, and token counts are stable across runs.
package chunker

import (
	"errors"
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
)

// DefaultMaxUnits is the default per-section token budget.
const DefaultMaxUnits = 2000

// ErrInvalidLimit is returned when the token budget is not positive.
var ErrInvalidLimit = errors.New("chunker: max units must be >= 1")

// Split divides text into sections of at most maxUnits tokens each,
// in document order. Empty input yields no sections.
func Split(text string, maxUnits int) ([]string, error) {
	if maxUnits < 1 {
		return nil, ErrInvalidLimit
	}
	if text == "" {
		return nil, nil
	}

	var sections []string
	var sb strings.Builder
	count := 0

	tokens := words.FromString(text)
	for tokens.Next() {
		if count == maxUnits {
			sections = append(sections, sb.String())
			sb.Reset()
			count = 0
		}
		sb.WriteString(tokens.Value())
		count++
	}
	if sb.Len() > 0 {
		sections = append(sections, sb.String())
	}

	return sections, nil
}

// Count returns the number of tokens in text under the same segmentation
// Split uses.
func Count(text string) int {
	n := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		n++
	}
	return n
}
