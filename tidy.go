package mdproc

import (
	"regexp"
	"strings"
)

// imageLinePattern matches a line that is (modulo whitespace) a single
// image reference. Used by TidyImageSpacing, which is looser than the
// upload scanner on purpose: it tidies any image line, remote or not.
var imageLinePattern = regexp.MustCompile(`^!\[.*?\]\(.*?\)`)

// TidyImageSpacing removes blank lines directly before and after image
// reference lines. Some publishing platforms render the surrounding
// blank lines as extra vertical gaps around figures.
// Returns the transformed text, the number of image lines seen, and the
// number of blank lines removed.
func TidyImageSpacing(content string) (string, int, int) {
	lines := strings.SplitAfter(content, "\n")
	// SplitAfter leaves an empty artifact when content ends with \n.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var out []string
	images, removed := 0, 0

	for i := 0; i < len(lines); {
		line := lines[i]
		if !imageLinePattern.MatchString(strings.TrimSpace(line)) {
			out = append(out, line)
			i++
			continue
		}

		images++

		// Drop blank lines stacked before the image.
		for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
			out = out[:len(out)-1]
			removed++
		}
		out = append(out, line)

		// Drop blank lines directly after the image.
		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			removed++
			j++
		}
		i = j
	}

	return strings.Join(out, ""), images, removed
}
