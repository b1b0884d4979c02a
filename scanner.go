package mdproc

import (
	"regexp"
	"strings"
)

// Precompiled scan patterns.
var (
	// Image references whose target ends in a raster image extension.
	// Targets may be remote URLs or local paths; data: URIs and anchors
	// never match because the extension anchor requires a plain path.
	imagePattern = regexp.MustCompile(`!\[(.*?)\]\(([^)\s]+?\.(?:[pP][nN][gG]|[jJ][pP][eE]?[gG]|[gG][iI][fF]|[wW][eE][bB][pP]))\)`)

	// A run of consecutive pipe-delimited lines. Candidate only; runs
	// without a delimiter row are rejected by isTableBlock.
	tablePattern = regexp.MustCompile(`(?m)(?:^[ \t]*\|[^\n]*\|[ \t]*(?:\n|$))+`)

	// GFM delimiter row: | --- | :---: | ... |
	tableDelimiterRow = regexp.MustCompile(`^[ \t]*\|(?:[ \t]*:?-+:?[ \t]*\|)+[ \t]*$`)

	// Fenced code block labeled mermaid. An unterminated fence simply
	// does not match, so it is skipped.
	mermaidPattern = regexp.MustCompile("(?s)```mermaid[ \t]*\n(.*?)\n[ \t]*```")
)

// ScanImages finds markdown image references in left-to-right order.
// Each Match carries the alt text and the target URL or path.
func ScanImages(content string) []Match {
	var matches []Match
	for _, idx := range imagePattern.FindAllStringSubmatchIndex(content, -1) {
		matches = append(matches, Match{
			Start:  idx[0],
			End:    idx[1],
			Text:   content[idx[0]:idx[1]],
			Alt:    content[idx[2]:idx[3]],
			Target: content[idx[4]:idx[5]],
		})
	}
	return matches
}

// ScanTables finds pipe table blocks in left-to-right order. A candidate
// block must have a header row followed by a GFM delimiter row; anything
// else (a lone pipe line, a delimiter-less run) is skipped rather than
// reported as an error.
func ScanTables(content string) []Match {
	var matches []Match
	for _, idx := range tablePattern.FindAllStringIndex(content, -1) {
		text := content[idx[0]:idx[1]]
		if !isTableBlock(text) {
			continue
		}
		matches = append(matches, Match{
			Start: idx[0],
			End:   idx[1],
			Text:  text,
			Body:  text,
		})
	}
	return matches
}

// isTableBlock reports whether a run of pipe lines is a real table:
// at least a header row and a delimiter row directly below it.
func isTableBlock(block string) bool {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	return len(lines) >= 2 && tableDelimiterRow.MatchString(lines[1])
}

// ScanMermaid finds fenced mermaid code blocks in left-to-right order.
// The Match body is the diagram source without the fences.
func ScanMermaid(content string) []Match {
	var matches []Match
	for _, idx := range mermaidPattern.FindAllStringSubmatchIndex(content, -1) {
		matches = append(matches, Match{
			Start: idx[0],
			End:   idx[1],
			Text:  content[idx[0]:idx[1]],
			Body:  strings.TrimSpace(content[idx[2]:idx[3]]),
		})
	}
	return matches
}
