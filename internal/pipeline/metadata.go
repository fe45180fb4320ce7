package pipeline

import (
	"fmt"

	"github.com/f559/auto-novel/internal/catalog"
)

// flattenMetadata lists a web task's translatable metadata as one ordered
// batch: title if present, introduction if present, then every TOC entry.
// reconstructMetadata depends on exactly this order.
func flattenMetadata(snapshot catalog.WebSnapshot) []string {
	var texts []string
	if snapshot.Title != nil {
		texts = append(texts, *snapshot.Title)
	}
	if snapshot.Introduction != nil {
		texts = append(texts, *snapshot.Introduction)
	}
	texts = append(texts, snapshot.Toc...)
	return texts
}

// reconstructMetadata consumes translated in flatten order and rebuilds the
// update payload, keying each TOC translation by its original entry. The
// matching translate call guarantees the lengths line up, but a short list
// is still rejected rather than indexed past.
func reconstructMetadata(snapshot catalog.WebSnapshot, translated []string) (catalog.MetadataUpdate, error) {
	expected := len(flattenMetadata(snapshot))
	if len(translated) < expected {
		return catalog.MetadataUpdate{}, fmt.Errorf(
			"translated metadata is short: expected %d items, got %d", expected, len(translated))
	}

	var update catalog.MetadataUpdate
	next := 0
	if snapshot.Title != nil {
		update.Title = &translated[next]
		next++
	}
	if snapshot.Introduction != nil {
		update.Introduction = &translated[next]
		next++
	}
	update.Toc = make(map[string]string, len(snapshot.Toc))
	for _, entry := range snapshot.Toc {
		update.Toc[entry] = translated[next]
		next++
	}
	return update, nil
}
