package mdproc

import (
	"fmt"
	"strings"
)

// Replacement pairs a scanned Match with the snippet that replaces it.
type Replacement struct {
	Match   Match
	Snippet string
}

// RewriteDocument produces the final document text by substituting each
// replacement's span with its snippet in a single left-to-right pass.
// Text between spans is preserved byte for byte. Replacements must be in
// document order and must not overlap; that holds for any slice built
// from a single scanner pass.
func RewriteDocument(content string, replacements []Replacement) (string, error) {
	var b strings.Builder
	b.Grow(len(content))

	prev := 0
	for i, r := range replacements {
		m := r.Match
		if m.Start < prev || m.End < m.Start || m.End > len(content) {
			return "", fmt.Errorf("%w: replacement %d spans [%d:%d) after offset %d",
				ErrInvalidReplacement, i, m.Start, m.End, prev)
		}
		b.WriteString(content[prev:m.Start])
		b.WriteString(r.Snippet)
		prev = m.End
	}
	b.WriteString(content[prev:])

	return b.String(), nil
}

// imageSnippet builds the markdown image reference that replaces a match.
func imageSnippet(alt, url string) string {
	return fmt.Sprintf("![%s](%s)", alt, url)
}
