package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitBudget(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []string
		budget     int
		want       [][]string
	}{
		{
			name:       "empty input",
			paragraphs: nil,
			budget:     10,
			want:       nil,
		},
		{
			name:       "fits in one batch",
			paragraphs: []string{"ab", "cd"},
			budget:     10,
			want:       [][]string{{"ab", "cd"}},
		},
		{
			name:       "splits at budget boundary",
			paragraphs: []string{"abc", "def", "gh"},
			budget:     6,
			want:       [][]string{{"abc", "def"}, {"gh"}},
		},
		{
			name:       "oversized paragraph travels alone",
			paragraphs: []string{"ab", strings.Repeat("x", 20), "cd"},
			budget:     10,
			want:       [][]string{{"ab"}, {strings.Repeat("x", 20)}, {"cd"}},
		},
		{
			name:       "zero budget disables splitting",
			paragraphs: []string{"a", "b"},
			budget:     0,
			want:       [][]string{{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBudget(tt.paragraphs, tt.budget)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitBudget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitBudgetPreservesOrder(t *testing.T) {
	paragraphs := []string{"一つ", "二つ", "三つ", "四つ", "五つ"}
	batches := SplitBudget(paragraphs, 4)

	var joined []string
	for _, b := range batches {
		joined = append(joined, b...)
	}
	if !reflect.DeepEqual(joined, paragraphs) {
		t.Errorf("concatenated batches = %v, want original %v", joined, paragraphs)
	}
}
