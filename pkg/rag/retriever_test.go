package rag

import (
	"testing"
)

func TestComposeContextBlock(t *testing.T) {
	tests := []struct {
		name    string
		results []ScoredText
		want    string
	}{
		{
			name:    "empty result yields explicit marker",
			results: nil,
			want:    NoContextMarker,
		},
		{
			name: "joins most similar first",
			results: []ScoredText{
				{Text: "Q: capital of France?\nA: Paris.", Similarity: 0.92},
				{Text: "Q: capital of Spain?\nA: Madrid.", Similarity: 0.71},
			},
			want: "Q: capital of France?\nA: Paris." + ContextDelimiter + "Q: capital of Spain?\nA: Madrid.",
		},
		{
			name: "skips blank snippets",
			results: []ScoredText{
				{Text: "   ", Similarity: 0.9},
				{Text: "something", Similarity: 0.5},
			},
			want: "something",
		},
		{
			name: "all blank snippets yield marker",
			results: []ScoredText{
				{Text: "", Similarity: 0.9},
			},
			want: NoContextMarker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeContextBlock(tt.results)
			if got != tt.want {
				t.Errorf("ComposeContextBlock = %q, want %q", got, tt.want)
			}
		})
	}
}
