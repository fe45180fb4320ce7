// Package glossary applies a source-term to target-term mapping around a
// translation backend. Prompt-driven backends receive the mapping inside the
// system prompt; the web dictionary backends get term placeholders substituted
// before the call and restored after it.
package glossary

import (
	"fmt"
	"sort"
	"strings"
)

// Glossary maps a source term to its required translation.
type Glossary map[string]string

// Terms returns the source terms ordered longest-first, ties broken
// lexicographically. Longest-first keeps a term that contains another term
// from being clobbered by the shorter one's substitution.
func (g Glossary) Terms() []string {
	terms := make([]string, 0, len(g))
	for term := range g {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return terms
}

// PromptBlock renders the glossary as instruction lines for LLM backends.
// Returns "" for an empty glossary.
func (g Glossary) PromptBlock() string {
	if len(g) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("The following terms MUST be translated exactly as specified:\n")
	for _, term := range g.Terms() {
		fmt.Fprintf(&b, "- %s => %s\n", term, g[term])
	}
	return b.String()
}

func placeholder(i int) string {
	return fmt.Sprintf("⦂%d⦃", i)
}

// Encode replaces every glossary term in texts with an opaque placeholder
// that dictionary backends pass through untouched. Decode restores the
// target terms. Substitution runs longest-first on both sides.
func (g Glossary) Encode(texts []string) []string {
	if len(g) == 0 {
		return texts
	}
	terms := g.Terms()
	out := make([]string, len(texts))
	for i, text := range texts {
		for ti, term := range terms {
			text = strings.ReplaceAll(text, term, placeholder(ti))
		}
		out[i] = text
	}
	return out
}

// Decode is the inverse of Encode, substituting target terms for
// placeholders.
func (g Glossary) Decode(texts []string) []string {
	if len(g) == 0 {
		return texts
	}
	terms := g.Terms()
	out := make([]string, len(texts))
	for i, text := range texts {
		for ti, term := range terms {
			text = strings.ReplaceAll(text, placeholder(ti), g[term])
		}
		out[i] = text
	}
	return out
}
