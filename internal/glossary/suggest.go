package glossary

import "sort"

// Candidate is a proposed glossary term with its occurrence count.
type Candidate struct {
	Term  string
	Count int
}

func isKatakana(r rune) bool {
	if r >= 0x30A1 && r <= 0x30FA {
		return true
	}
	// Prolonged sound mark and middle dot, common inside loanword names.
	return r == 'ー' || r == '・'
}

// Suggest proposes glossary candidates by collecting katakana runs from the
// paragraphs and ranking them by frequency. Runs shorter than two characters
// and terms seen fewer than minCount times are dropped; at most limit
// candidates are returned (limit <= 0 means no cap).
func Suggest(paragraphs []string, minCount, limit int) []Candidate {
	if minCount < 1 {
		minCount = 1
	}
	counts := make(map[string]int)
	for _, p := range paragraphs {
		var run []rune
		flush := func() {
			if len(run) >= 2 {
				counts[string(run)]++
			}
			run = run[:0]
		}
		for _, r := range p {
			if isKatakana(r) {
				run = append(run, r)
				continue
			}
			flush()
		}
		flush()
	}

	candidates := make([]Candidate, 0, len(counts))
	for term, count := range counts {
		if count < minCount {
			continue
		}
		candidates = append(candidates, Candidate{Term: term, Count: count})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Count != candidates[j].Count {
			return candidates[i].Count > candidates[j].Count
		}
		return candidates[i].Term < candidates[j].Term
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
