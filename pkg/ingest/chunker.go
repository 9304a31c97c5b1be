package ingest

import "strings"

const minChunkSize = 50

// Chunk splits text into overlapping windows of at most `size` runes.
// The window walks the trimmed input; each trimmed, non-empty window is
// appended to the output. `size` is floored at 50 and `overlap` at 0 to
// avoid degenerate behavior; the walk always advances, so any
// size/overlap combination terminates. Empty input yields an empty
// slice.
func Chunk(text string, size int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}

	if size < minChunkSize {
		size = minChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	total := len(runes)

	var chunks []string
	start := 0
	for {
		end := start + size
		if end > total {
			end = total
		}

		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			chunks = append(chunks, window)
		}

		if end == total {
			break
		}

		next := end - overlap
		if next < 0 {
			next = 0
		}
		// Guard against overlap >= size stalling the walk.
		if next <= start {
			next = end
		}
		start = next
	}

	if chunks == nil {
		return []string{}
	}
	return chunks
}
