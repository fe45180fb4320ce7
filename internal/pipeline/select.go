package pipeline

import (
	"sort"

	"github.com/f559/auto-novel/internal/catalog"
)

// Selection is one unit of work. Index is the chapter's position in the web
// task's chapter list; volume shapes have no positional order and leave it
// zero.
type Selection struct {
	Index     int
	ChapterID string
}

// selectWebChapters applies the state filter to the snapshot's chapter list,
// restricted to the half-open window [start, end). Order is the original
// list order.
//
// A chapter is kept when it is untranslated, when it is expired and either
// flag pulls expired chapters back in, or when it is already translated and
// the job re-syncs from the source.
func selectWebChapters(chapters []catalog.ChapterRecord, start, end int, translateExpired, syncFromSource bool) []Selection {
	var selected []Selection
	for i, ch := range chapters {
		if i < start || i >= end {
			continue
		}
		keep := false
		switch ch.State {
		case catalog.StateUntranslated:
			keep = true
		case catalog.StateExpired:
			keep = translateExpired || syncFromSource
		case catalog.StateTranslated:
			keep = syncFromSource
		}
		if keep {
			selected = append(selected, Selection{Index: i, ChapterID: ch.ID})
		}
	}
	return selected
}

// selectVolumeChapters builds the work list for library and local volumes:
// the untranslated chapters, plus the expired ones when requested, sorted by
// chapter id. The sort is load-bearing: volume snapshots carry no positional
// order, and the lexicographic order makes reruns process chapters in the
// same sequence regardless of catalog insertion order.
func selectVolumeChapters(untranslated, expired []string, translateExpired bool) []Selection {
	seen := make(map[string]bool, len(untranslated)+len(expired))
	var ids []string
	for _, id := range untranslated {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if translateExpired {
		for _, id := range expired {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)

	selected := make([]Selection, 0, len(ids))
	for _, id := range ids {
		selected = append(selected, Selection{ChapterID: id})
	}
	return selected
}
