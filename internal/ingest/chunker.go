package ingest

import "strings"

// separators tried in order when looking for a natural break near the end
// of a chunk: paragraph, line, sentence, word.
var separators = []string{"\n\n", "\n", ". ", " "}

// SplitText slices text into chunks of at most size characters with the
// given overlap between consecutive chunks. Breaks prefer paragraph and
// sentence boundaries over hard cuts.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := breakPoint(text[start:end])
		if cut <= 0 {
			cut = size
		}

		chunk := strings.TrimSpace(text[start : start+cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := start + cut - overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}

	return chunks
}

// breakPoint finds the latest natural boundary in window, preferring
// stronger separators. Returns the cut position after the separator, or -1
// when no separator appears in the second half of the window.
func breakPoint(window string) int {
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > len(window)/2 {
			return idx + len(sep)
		}
	}
	return -1
}
