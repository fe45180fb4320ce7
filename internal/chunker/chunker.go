// Package chunker splits paragraph batches that exceed a backend's request
// budget into smaller batches while preserving paragraph order.
package chunker

import "github.com/rivo/uniseg"

// SplitBudget splits paragraphs into consecutive batches whose combined
// grapheme count stays within maxGraphemes. Paragraphs are never split; a
// single paragraph larger than the budget travels in a batch of its own.
// Concatenating the batches in order reproduces the input exactly.
func SplitBudget(paragraphs []string, maxGraphemes int) [][]string {
	if len(paragraphs) == 0 {
		return nil
	}
	if maxGraphemes <= 0 {
		return [][]string{paragraphs}
	}

	var batches [][]string
	var current []string
	used := 0

	for _, p := range paragraphs {
		size := uniseg.GraphemeClusterCount(p)
		if len(current) > 0 && used+size > maxGraphemes {
			batches = append(batches, current)
			current = nil
			used = 0
		}
		current = append(current, p)
		used += size
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
