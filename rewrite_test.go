package mdproc

import (
	"errors"
	"strings"
	"testing"
)

func TestRewriteDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		replacements []Replacement
		want         string
	}{
		{
			name:    "no replacements returns input unchanged",
			content: "# Title\n\nsome text\n",
			want:    "# Title\n\nsome text\n",
		},
		{
			name:    "single replacement",
			content: "before MATCH after",
			replacements: []Replacement{
				{Match: Match{Start: 7, End: 12, Text: "MATCH"}, Snippet: "X"},
			},
			want: "before X after",
		},
		{
			name:    "replacement longer than match",
			content: "a M b",
			replacements: []Replacement{
				{Match: Match{Start: 2, End: 3, Text: "M"}, Snippet: "![alt](https://bucket/imgs/x.png)"},
			},
			want: "a ![alt](https://bucket/imgs/x.png) b",
		},
		{
			name:    "multiple replacements preserve gaps",
			content: "aa X bb Y cc",
			replacements: []Replacement{
				{Match: Match{Start: 3, End: 4}, Snippet: "1"},
				{Match: Match{Start: 8, End: 9}, Snippet: "22"},
			},
			want: "aa 1 bb 22 cc",
		},
		{
			name:    "replacement at document start and end",
			content: "X middle Y",
			replacements: []Replacement{
				{Match: Match{Start: 0, End: 1}, Snippet: "start"},
				{Match: Match{Start: 9, End: 10}, Snippet: "end"},
			},
			want: "start middle end",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteDocument(tt.content, tt.replacements)
			if err != nil {
				t.Fatalf("RewriteDocument() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RewriteDocument() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteDocument_InvariantViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		replacements []Replacement
	}{
		{
			name:    "overlapping replacements",
			content: "abcdef",
			replacements: []Replacement{
				{Match: Match{Start: 0, End: 3}, Snippet: "x"},
				{Match: Match{Start: 2, End: 5}, Snippet: "y"},
			},
		},
		{
			name:    "out of order replacements",
			content: "abcdef",
			replacements: []Replacement{
				{Match: Match{Start: 4, End: 5}, Snippet: "x"},
				{Match: Match{Start: 0, End: 1}, Snippet: "y"},
			},
		},
		{
			name:    "span past end of document",
			content: "abc",
			replacements: []Replacement{
				{Match: Match{Start: 1, End: 10}, Snippet: "x"},
			},
		},
		{
			name:    "inverted span",
			content: "abcdef",
			replacements: []Replacement{
				{Match: Match{Start: 3, End: 2}, Snippet: "x"},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := RewriteDocument(tt.content, tt.replacements)
			if !errors.Is(err, ErrInvalidReplacement) {
				t.Errorf("RewriteDocument() error = %v, want ErrInvalidReplacement", err)
			}
		})
	}
}

// Scanned matches always satisfy the rewriter's invariants; replacing
// every table in a document must keep all other bytes identical.
func TestRewriteDocument_WithScannedMatches(t *testing.T) {
	t.Parallel()

	doc := "intro\n\n| A | B |\n|---|---|\n| 1 | 2 |\n\nmiddle\n\n| C |\n|---|\n| 3 |\n\noutro\n"
	matches := ScanTables(doc)
	if len(matches) != 2 {
		t.Fatalf("want 2 tables, got %d", len(matches))
	}

	var replacements []Replacement
	for _, m := range matches {
		replacements = append(replacements, Replacement{Match: m, Snippet: "IMG\n"})
	}

	got, err := RewriteDocument(doc, replacements)
	if err != nil {
		t.Fatalf("RewriteDocument() error = %v", err)
	}

	want := "intro\n\nIMG\n\nmiddle\n\nIMG\n\noutro\n"
	if got != want {
		t.Errorf("RewriteDocument() = %q, want %q", got, want)
	}
	if strings.Count(got, "IMG") != 2 {
		t.Errorf("want exactly 2 replacement snippets")
	}
}

func TestImageSnippet(t *testing.T) {
	t.Parallel()

	got := imageSnippet("Table 1", "https://b.cos.r.myqcloud.com/imgs/table_1_deadbeef.png")
	want := "![Table 1](https://b.cos.r.myqcloud.com/imgs/table_1_deadbeef.png)"
	if got != want {
		t.Errorf("imageSnippet() = %q, want %q", got, want)
	}
}
