package backend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/f559/auto-novel/internal/apperrors"
)

var markdownFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// parseJSONArray extracts a JSON array of strings from an LLM response.
// Models wrap the array in markdown fences or prose often enough that the
// parser hunts for the outermost brackets before decoding.
func parseJSONArray(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	if m := markdownFence.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	var out []string
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, apperrors.Validation(
			fmt.Errorf("response is not a JSON string array: %w", err))
	}
	if len(out) != expected {
		return nil, apperrors.Validation(
			fmt.Errorf("translation count mismatch: expected %d, got %d", expected, len(out)))
	}
	return out, nil
}

// partitionBlank splits out the non-blank paragraphs for backends that drop
// empty lines. restore re-inserts blanks at their original positions around
// the translated non-blank paragraphs.
func partitionBlank(texts []string) (nonBlank []string, restore func(translated []string) []string) {
	blank := make([]bool, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			blank[i] = true
			continue
		}
		nonBlank = append(nonBlank, t)
	}
	restore = func(translated []string) []string {
		out := make([]string, len(texts))
		next := 0
		for i := range texts {
			if blank[i] {
				out[i] = texts[i]
				continue
			}
			out[i] = translated[next]
			next++
		}
		return out
	}
	return nonBlank, restore
}

// numberedList renders a batch as the numbered source block LLM prompts use.
func numberedList(texts []string) string {
	var b strings.Builder
	for i, t := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	return b.String()
}
